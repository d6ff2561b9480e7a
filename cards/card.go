// Package cards implements the 52-card enumeration and a shuffled dealing
// sequence shared by the game engine, the hand evaluator wrapper, and the
// solver's community-card dealing.
package cards

import (
	"fmt"
	"math/rand"

	"github.com/idsulik/go-collections/v3/queue"
)

// Card is an integer 0..51. rank = idx/4 (0=2 ... 12=A), suit = idx%4
// (0=c, 1=d, 2=h, 3=s).
type Card int8

const (
	NumRanks = 13
	NumSuits = 4
	NumCards = NumRanks * NumSuits
)

var rankChars = [NumRanks]byte{'2', '3', '4', '5', '6', '7', '8', '9', 'T', 'J', 'Q', 'K', 'A'}
var suitChars = [NumSuits]byte{'c', 'd', 'h', 's'}

// NewCard builds a Card from a 0-based rank (0=2..12=A) and suit (0=c..3=s).
func NewCard(rank, suit int) Card {
	return Card(rank*NumSuits + suit)
}

func (c Card) Rank() int { return int(c) / NumSuits }
func (c Card) Suit() int { return int(c) % NumSuits }

func (c Card) String() string {
	if c < 0 || int(c) >= NumCards {
		return "??"
	}
	return string([]byte{rankChars[c.Rank()], suitChars[c.Suit()]})
}

func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// SortCards orders cards ascending by index in place, which collapses suit
// permutations of equivalent hands into the same sequence.
func SortCards(cs []Card) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j-1] > cs[j]; j-- {
			cs[j-1], cs[j] = cs[j], cs[j-1]
		}
	}
}

// Sorted returns a sorted copy of cs, leaving cs untouched.
func Sorted(cs []Card) []Card {
	out := make([]Card, len(cs))
	copy(out, cs)
	SortCards(out)
	return out
}

// ErrDeckExhausted is returned when a deal is requested past the end of
// the shuffled sequence.
var ErrDeckExhausted = fmt.Errorf("cards: deck exhausted")

// Deck is a full 52-card shuffle exposed as a fixed sequence. Dealing
// advances an externally-owned cursor rather than mutating the deck, so a
// solver can snapshot and restore its position cheaply around a recursive
// branch (the cursor is a plain int, not a consumed data structure).
type Deck struct {
	rng   *rand.Rand
	cards [NumCards]Card
}

// NewDeck creates a deck backed by rng and performs an initial shuffle.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	d.Reset()
	return d
}

// Reset reshuffles the full 52-card deck. The shuffle order is produced by
// draining a random permutation through a FIFO queue, matching the order
// in which cards would be physically dealt off the top of a shuffled deck.
func (d *Deck) Reset() {
	q := queue.New[Card](NumCards)
	for _, idx := range d.rng.Perm(NumCards) {
		q.Enqueue(Card(idx))
	}
	i := 0
	for {
		c, ok := q.Dequeue()
		if !ok {
			break
		}
		d.cards[i] = c
		i++
	}
}

// At returns the card at cursor position idx (0-based, in shuffled dealing
// order) and whether idx was in range.
func (d *Deck) At(idx int) (Card, bool) {
	if idx < 0 || idx >= NumCards {
		return 0, false
	}
	return d.cards[idx], true
}

// DealAt draws n cards starting at *idx, advancing *idx past them. It
// returns ErrDeckExhausted (with the cards drawn so far) if the deck runs
// out first; callers must not advance the street on that branch.
func (d *Deck) DealAt(idx *int, n int) ([]Card, error) {
	out := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		c, ok := d.At(*idx)
		if !ok {
			return out, ErrDeckExhausted
		}
		out = append(out, c)
		*idx++
	}
	return out, nil
}

// Clone returns an independent copy of the shuffled sequence (same cards,
// same order) that shares d's rng. Solver workers do not use it: each
// builds its own deck with NewDeck and its own rng.
func (d *Deck) Clone() *Deck {
	cp := &Deck{rng: d.rng}
	cp.cards = d.cards
	return cp
}
