// Package handeval wraps the external 7-card hand-ranking function the
// solver treats as a black box. It never re-derives poker hand categories
// itself; it only adapts this repository's Card representation to and from
// github.com/paulhankin/poker and inverts that library's "higher is
// better" convention into this repository's "lower is better" one.
package handeval

import (
	"nlhe-solver/cards"

	"github.com/paulhankin/poker"
)

// toLibrary converts a local Card into a paulhankin/poker Card. The
// library's ranks run 1 (deuce) .. 13 (ace); ours run 0 (deuce) .. 12
// (ace), so the conversion is a +1 shift, not the library's own ace-low
// special case.
func toLibrary(c cards.Card) poker.Card {
	var s poker.Suit
	switch c.Suit() {
	case 0:
		s = poker.Club
	case 1:
		s = poker.Diamond
	case 2:
		s = poker.Heart
	default:
		s = poker.Spade
	}
	lc, _ := poker.MakeCard(s, poker.Rank(c.Rank()+1))
	return lc
}

// Rank7 ranks a 7-card hand (2 hole + 5 board cards). Lower is better,
// inverting poker.Eval7's "higher is better" score.
func Rank7(hole [2]cards.Card, board [5]cards.Card) uint16 {
	var seven [7]poker.Card
	seven[0] = toLibrary(hole[0])
	seven[1] = toLibrary(hole[1])
	for i, c := range board {
		seven[2+i] = toLibrary(c)
	}
	score := poker.Eval7(&seven)
	return uint16(32767 - score)
}

// Describe returns the library's human-readable description of the best
// 5-card hand within hole+board, e.g. "flush, ace high".
func Describe(hole [2]cards.Card, board []cards.Card) (string, error) {
	all := make([]poker.Card, 0, 2+len(board))
	all = append(all, toLibrary(hole[0]), toLibrary(hole[1]))
	for _, c := range board {
		all = append(all, toLibrary(c))
	}
	return poker.Describe(all)
}
