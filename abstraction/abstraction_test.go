package abstraction

import (
	"testing"

	"nlhe-solver/game"
)

func TestHeadsUpSBFirstInOffersNoFold(t *testing.T) {
	gs, err := game.New(2, 100, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	specs := GetPossibleActionSpecs(gs)
	for _, s := range specs {
		if s.Kind == game.Fold {
			t.Errorf("HU SB first-in must not offer Fold, got %v", specs)
		}
	}
	var sawCall, sawAllIn bool
	raiseCount := 0
	for _, s := range specs {
		switch s.Kind {
		case game.Call:
			sawCall = true
		case game.AllIn:
			sawAllIn = true
		case game.Raise:
			raiseCount++
		}
	}
	if !sawCall || sawAllIn || raiseCount != 2 {
		t.Errorf("expected exactly {Call, Raise x2}, no AllIn, got %v", specs)
	}
}

func TestHeadsUpSBRaiseAmounts(t *testing.T) {
	gs, err := game.New(2, 100, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	specs := GetPossibleActionSpecs(gs)
	var amounts []int64
	for _, s := range specs {
		if s.Kind == game.Raise {
			amounts = append(amounts, GetActionAmount(s, gs))
		}
	}
	want := []int64{6, 8} // 3bb and 4bb at BigBlind=2.
	if len(amounts) != len(want) {
		t.Fatalf("expected %d raise specs, got %v", len(want), amounts)
	}
	for i, w := range want {
		if amounts[i] != w {
			t.Errorf("raise %d: expected amount %d, got %d", i, w, amounts[i])
		}
	}
}

func TestGetActionAmountIsPure(t *testing.T) {
	gs, err := game.New(3, 100, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	spec := ActionSpec{Kind: game.Raise, Value: 3.0, Unit: BigBlinds}
	a1 := GetActionAmount(spec, gs)
	a2 := GetActionAmount(spec, gs)
	if a1 != a2 {
		t.Errorf("GetActionAmount is not pure: %d != %d", a1, a2)
	}
	p := gs.CurrentPlayer()
	if gs.Stack(p) != 100 || gs.BetThisRound(p) != 0 {
		t.Errorf("GetActionAmount mutated state: stack=%d bet=%d", gs.Stack(p), gs.BetThisRound(p))
	}
}

func TestNoSpecBelowMinRaiseSurvivesDedup(t *testing.T) {
	gs, err := game.New(3, 100, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p := gs.CurrentPlayer()
	minLegal := int64(gs.BetThisRound(p)) + int64(gs.AmountToCall(p)) + int64(game.BigBlind)
	allIn := int64(gs.Stack(p)) + int64(gs.BetThisRound(p))
	for _, s := range GetPossibleActionSpecs(gs) {
		if s.Kind != game.Bet && s.Kind != game.Raise {
			continue
		}
		amount := GetActionAmount(s, gs)
		if amount < minLegal && amount != allIn {
			t.Errorf("spec %v has sub-minimum amount %d (min %d)", s, amount, minLegal)
		}
	}
}

func TestAllInOmittedOnFreshPreflopRFI(t *testing.T) {
	gs, err := game.New(4, 100, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, s := range GetPossibleActionSpecs(gs) {
		if s.Kind == game.AllIn {
			t.Errorf("a fresh RFI situation (no raises yet this street) should not offer AllIn, got %v", s)
		}
	}
}

func TestAllInAvailableWhenFacingAPreflopRaise(t *testing.T) {
	gs, err := game.New(4, 100, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := gs.ApplyAction(game.Action{Kind: game.Raise, Amount: 6, Player: gs.CurrentPlayer()}); err != nil {
		t.Fatalf("open raise: %v", err)
	}
	var sawAllIn bool
	for _, s := range GetPossibleActionSpecs(gs) {
		if s.Kind == game.AllIn {
			sawAllIn = true
		}
	}
	if !sawAllIn {
		t.Errorf("expected AllIn to be offered once a real raise has occurred this street")
	}
}

func TestAllInAvailablePostflopWhenStackExceedsCall(t *testing.T) {
	gs, err := game.New(2, 100, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := gs.ApplyAction(game.Action{Kind: game.Call, Player: gs.CurrentPlayer()}); err != nil {
		t.Fatalf("SB call: %v", err)
	}
	if err := gs.ApplyAction(game.Action{Kind: game.Check, Player: gs.CurrentPlayer()}); err != nil {
		t.Fatalf("BB check: %v", err)
	}
	var sawAllIn bool
	for _, s := range GetPossibleActionSpecs(gs) {
		if s.Kind == game.AllIn {
			sawAllIn = true
		}
	}
	if !sawAllIn {
		t.Errorf("expected AllIn to always be offered postflop when stack > amount to call")
	}
}

func TestPostflopUnopenedOffersBetsNotRaises(t *testing.T) {
	gs, err := game.New(2, 100, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := gs.ApplyAction(game.Action{Kind: game.Call, Player: gs.CurrentPlayer()}); err != nil {
		t.Fatalf("SB call: %v", err)
	}
	if err := gs.ApplyAction(game.Action{Kind: game.Check, Player: gs.CurrentPlayer()}); err != nil {
		t.Fatalf("BB check: %v", err)
	}
	if gs.Street() != game.Flop {
		t.Fatalf("expected flop, got %v", gs.Street())
	}
	for _, s := range GetPossibleActionSpecs(gs) {
		if s.Kind == game.Raise {
			t.Errorf("unopened postflop action set should not contain Raise, got %v", s)
		}
	}
}
