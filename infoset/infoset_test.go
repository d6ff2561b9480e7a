package infoset

import (
	"testing"

	"nlhe-solver/cards"
	"nlhe-solver/game"
)

func TestKeyCollapsesSuitPermutations(t *testing.T) {
	gs, err := game.New(2, 100, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	hands := [][2]cards.Card{
		{cards.NewCard(12, 0), cards.NewCard(11, 1)}, // Ac Kd
		{cards.NewCard(5, 2), cards.NewCard(3, 3)},
	}
	gs.DealHoleCards(hands)
	key1 := Key(gs, 0)

	gs2, err := game.New(2, 100, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	hands2 := [][2]cards.Card{
		{cards.NewCard(11, 1), cards.NewCard(12, 0)}, // same cards, reversed order
		{cards.NewCard(5, 2), cards.NewCard(3, 3)},
	}
	gs2.DealHoleCards(hands2)
	key2 := Key(gs2, 0)

	if key1 != key2 {
		t.Errorf("expected equivalent hole-card orderings to collapse to the same key: %q vs %q", key1, key2)
	}
}

func TestKeyDistinguishesPlayers(t *testing.T) {
	gs, err := game.New(2, 100, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	hands := [][2]cards.Card{
		{cards.NewCard(12, 0), cards.NewCard(11, 1)},
		{cards.NewCard(5, 2), cards.NewCard(3, 3)},
	}
	gs.DealHoleCards(hands)
	if Key(gs, 0) == Key(gs, 1) {
		t.Errorf("different players' keys must differ")
	}
}

func TestContextKeyIgnoresHoleCards(t *testing.T) {
	gs, err := game.New(2, 100, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	hands := [][2]cards.Card{
		{cards.NewCard(12, 0), cards.NewCard(11, 1)},
		{cards.NewCard(5, 2), cards.NewCard(3, 3)},
	}
	gs.DealHoleCards(hands)
	c1 := ContextKey(gs)

	gs2, err := game.New(2, 100, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	gs2.DealHoleCards([][2]cards.Card{
		{cards.NewCard(0, 0), cards.NewCard(1, 1)},
		{cards.NewCard(2, 2), cards.NewCard(3, 3)},
	})
	c2 := ContextKey(gs2)

	if c1 != c2 {
		t.Errorf("ContextKey should be identical across different hole cards at the same decision point: %q vs %q", c1, c2)
	}
}

func TestKeyFromComponentsMatchesLiveKey(t *testing.T) {
	gs, err := game.New(2, 100, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	hole := [2]cards.Card{cards.NewCard(12, 0), cards.NewCard(11, 1)}
	gs.DealHoleCards([][2]cards.Card{hole, {cards.NewCard(5, 2), cards.NewCard(3, 3)}})

	live := Key(gs, 0)
	explicit := KeyFromComponents(0, hole, gs.History(), gs)
	if live != explicit {
		t.Errorf("KeyFromComponents should match Key for equivalent inputs: %q vs %q", live, explicit)
	}
}
