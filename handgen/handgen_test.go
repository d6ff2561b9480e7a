package handgen

import (
	"testing"

	"nlhe-solver/cards"
)

func TestAll1326CountAndUniqueness(t *testing.T) {
	combos := All1326()
	if len(combos) != 1326 {
		t.Fatalf("expected 1326 combinations, got %d", len(combos))
	}
	seen := make(map[[2]cards.Card]bool, 1326)
	for _, c := range combos {
		if seen[c] {
			t.Fatalf("duplicate combination: %v", c)
		}
		seen[c] = true
	}
}

func TestAll169CountAndUniqueness(t *testing.T) {
	types := All169()
	if len(types) != 169 {
		t.Fatalf("expected 169 canonical hand types, got %d", len(types))
	}
	seen := make(map[string]bool, 169)
	for _, tp := range types {
		if seen[tp] {
			t.Fatalf("duplicate hand type: %q", tp)
		}
		seen[tp] = true
	}
}

func TestCanonicalTypeExamples(t *testing.T) {
	cases := []struct {
		a, b cards.Card
		want string
	}{
		{cards.NewCard(12, 0), cards.NewCard(12, 1), "AA"},
		{cards.NewCard(12, 0), cards.NewCard(11, 0), "AKs"},
		{cards.NewCard(12, 0), cards.NewCard(11, 1), "AKo"},
		{cards.NewCard(5, 2), cards.NewCard(0, 3), "72o"},
	}
	for _, c := range cases {
		got := CanonicalType(c.a, c.b)
		if got != c.want {
			t.Errorf("CanonicalType(%v, %v) = %q, want %q", c.a, c.b, got, c.want)
		}
	}
}

func TestCanonicalTypeIsOrderIndependent(t *testing.T) {
	a, b := cards.NewCard(12, 0), cards.NewCard(11, 1)
	if CanonicalType(a, b) != CanonicalType(b, a) {
		t.Errorf("CanonicalType should not depend on argument order")
	}
}

func TestPositionLabelHeadsUp(t *testing.T) {
	if got := PositionLabel(0, 2, 0); got != "SB" {
		t.Errorf("HU seat 0 (button): expected SB, got %q", got)
	}
	if got := PositionLabel(1, 2, 0); got != "BB" {
		t.Errorf("HU seat 1: expected BB, got %q", got)
	}
}

func TestPositionLabelSixMax(t *testing.T) {
	want := map[int]string{0: "BTN", 1: "SB", 2: "BB", 3: "UTG", 4: "MP", 5: "CO"}
	for seat, label := range want {
		if got := PositionLabel(seat, 6, 0); got != label {
			t.Errorf("6-max seat %d: expected %q, got %q", seat, label, got)
		}
	}
}

func TestPositionLabelsAreDistinctPerSeat(t *testing.T) {
	seen := make(map[string]bool)
	for seat := 0; seat < 6; seat++ {
		seen[PositionLabel(seat, 6, 0)] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 distinct position labels at a 6-max table, got %v", seen)
	}
}
