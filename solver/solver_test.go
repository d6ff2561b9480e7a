package solver

import (
	"math"
	"math/rand"
	"sync/atomic"
	"testing"

	"nlhe-solver/cards"
	"nlhe-solver/game"
)

func TestRegretMatchUniformFallback(t *testing.T) {
	strategy := RegretMatch([]float64{0, 0, 0})
	for _, p := range strategy {
		if math.Abs(p-1.0/3.0) > 1e-9 {
			t.Errorf("expected uniform fallback, got %v", strategy)
		}
	}
}

func TestRegretMatchPositiveOnly(t *testing.T) {
	strategy := RegretMatch([]float64{3, -2, 1})
	var sum float64
	for _, p := range strategy {
		if p < 0 {
			t.Errorf("RegretMatch produced a negative probability: %v", strategy)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("strategy does not sum to 1: %v", strategy)
	}
	if strategy[1] != 0 {
		t.Errorf("negative-regret action should get zero probability, got %v", strategy[1])
	}
	if strategy[0] <= strategy[2] {
		t.Errorf("higher regret should get higher probability: %v", strategy)
	}
}

func TestRegretMatchEmpty(t *testing.T) {
	if got := RegretMatch(nil); len(got) != 0 {
		t.Errorf("expected empty strategy for empty regret, got %v", got)
	}
}

func TestCFRRecurseHeadsUpSmallStackRunsToCompletion(t *testing.T) {
	s := New()
	rng := rand.New(rand.NewSource(1))
	deck := cards.NewDeck(rng)

	for i := 0; i < 20; i++ {
		gs, err := game.New(2, 10, 0, i%2)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		deck.Reset()
		cardIdx := 0
		hands := make([][2]cards.Card, 2)
		for p := range hands {
			dealt, err := deck.DealAt(&cardIdx, 2)
			if err != nil {
				t.Fatalf("dealing hole cards: %v", err)
			}
			hands[p] = [2]cards.Card{dealt[0], dealt[1]}
		}
		gs.DealHoleCards(hands)

		for traverser := 0; traverser < 2; traverser++ {
			reach := []float64{1, 1}
			idx := cardIdx
			u, err := s.CFRRecurse(gs.Clone(), traverser, reach, deck, &idx, rng, 0)
			if err != nil {
				t.Fatalf("CFRRecurse: %v", err)
			}
			if math.IsNaN(u) || math.IsInf(u, 0) {
				t.Fatalf("CFRRecurse returned a non-finite utility: %v", u)
			}
		}
	}

	if s.Table.Count() == 0 {
		t.Errorf("expected at least one infoset to be visited")
	}
}

func TestGetStrategyInfoUnknownKey(t *testing.T) {
	s := New()
	found, _, _ := s.GetStrategyInfo("never-visited")
	if found {
		t.Errorf("expected found=false for an unvisited key")
	}
}

func TestBumpMaxNeverDecreases(t *testing.T) {
	var a atomic.Int64
	bumpMax(&a, 5)
	bumpMax(&a, 3)
	bumpMax(&a, 9)
	if a.Load() != 9 {
		t.Errorf("expected running max 9, got %d", a.Load())
	}
}
