// Package abstraction compresses the continuous bet-sizing space into a
// small, context-dependent discrete set so the solver's tree is finite.
// It is policy, not rules: every amount it proposes is still validated by
// game.GameState.ApplyAction, which is the single source of truth for
// legality.
package abstraction

import (
	"fmt"
	"math"
	"sort"

	"nlhe-solver/game"
)

// Unit tags how ActionSpec.Value is interpreted for Bet/Raise specs. It is
// meaningless for Fold/Check/Call/AllIn.
type Unit int

// Values are fixed to match the checkpoint binary format.
const (
	BigBlinds Unit = iota
	PercentPot
	MultiplierX
	Absolute
)

func (u Unit) String() string {
	switch u {
	case BigBlinds:
		return "bb"
	case PercentPot:
		return "pct"
	case MultiplierX:
		return "x"
	case Absolute:
		return ""
	default:
		return ""
	}
}

// ActionSpec names one abstracted action: a chip amount is only computed
// from it at GetActionAmount time, against a specific GameState.
type ActionSpec struct {
	Kind  game.ActionKind
	Value float64
	Unit  Unit
}

const sizingEpsilon = 1e-5

// equal compares two specs the way the abstraction's dedup pass does:
// same kind, same unit, and values within sizingEpsilon.
func (s ActionSpec) equal(o ActionSpec) bool {
	return s.Kind == o.Kind && s.Unit == o.Unit && math.Abs(s.Value-o.Value) < sizingEpsilon
}

func (s ActionSpec) String() string {
	switch s.Kind {
	case game.Fold, game.Check, game.Call, game.AllIn:
		return s.Kind.String()
	default:
		if math.Abs(s.Value-math.Round(s.Value)) < sizingEpsilon {
			return fmt.Sprintf("%s_%d%s", s.Kind, int(math.Round(s.Value)), s.Unit)
		}
		return fmt.Sprintf("%s_%.1f%s", s.Kind, s.Value, s.Unit)
	}
}

// tenths converts a value with at most one decimal digit into an integer
// count of tenths, so every sizing computation below is exact integer
// arithmetic rather than floating point; chip amounts must be exact for
// the dedup pass and for the history string's integer tokens.
func tenths(v float64) int64 {
	return int64(math.Round(v * 10))
}

// roundHalfUp implements round_half_up(numer, denom) = (numer + denom/2) / denom.
func roundHalfUp(numer, denom int64) int64 {
	return (numer + denom/2) / denom
}

func clamp64(v, lo, hi int64) int64 {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// GetActionAmount returns the total street commitment the player must have
// after taking the action described by spec, or -1 for Fold/Check/Call.
func GetActionAmount(spec ActionSpec, gs *game.GameState) int64 {
	p := gs.CurrentPlayer()
	stack := int64(gs.Stack(p))
	betsP := int64(gs.BetThisRound(p))
	allInTotal := stack + betsP

	switch spec.Kind {
	case game.Fold, game.Check, game.Call:
		return -1
	case game.AllIn:
		return allInTotal
	case game.Bet:
		if gs.AmountToCall(p) != 0 {
			return -1
		}
		var increment int64
		switch spec.Unit {
		case PercentPot:
			increment = max64(1, roundHalfUp(int64(gs.Pot())*tenths(spec.Value), 1000))
		default:
			return -1
		}
		target := betsP + increment
		minIncrement := clamp64(max64(1, int64(game.BigBlind)), 1, stack)
		target = max64(target, betsP+minIncrement)
		return clamp64(target, 0, allInTotal)
	case game.Raise:
		amountToCall := int64(gs.AmountToCall(p))
		base := betsP + amountToCall
		var target int64
		switch spec.Unit {
		case BigBlinds:
			target = roundHalfUp(tenths(spec.Value)*int64(game.BigBlind), 10)
		case PercentPot:
			potAfterCall := int64(gs.Pot()) + amountToCall
			increment := max64(1, roundHalfUp(potAfterCall*tenths(spec.Value), 1000))
			target = base + increment
		case MultiplierX:
			refBet := int64(gs.ReferenceBet())
			increment := max64(1, roundHalfUp(refBet*tenths(spec.Value), 10))
			target = base + increment
		default:
			return -1
		}
		minLegalTotal := base + max64(int64(gs.LastRaiseSize()), int64(game.BigBlind))
		target = max64(target, minLegalTotal)
		return clamp64(target, 0, allInTotal)
	default:
		return -1
	}
}

// preflopRaiseTable builds the candidate Raise specs (before dedup/filter)
// for the current preflop context, per the context-dependent sizing table.
func preflopRaiseTable(gs *game.GameState) []ActionSpec {
	p := gs.CurrentPlayer()
	hu := gs.NumPlayers() == 2
	raises := gs.RaisesThisStreet()
	limpers := gs.NumLimpers()

	sbIdx, bbIdx := preflopBlindIndices(gs)

	switch {
	case raises == 0 && limpers == 0 && hu && p == sbIdx:
		// HU SB first-in.
		return []ActionSpec{
			{Kind: game.Raise, Value: 3.0, Unit: BigBlinds},
			{Kind: game.Raise, Value: 4.0, Unit: BigBlinds},
		}
	case raises == 0 && limpers == 0 && gs.IsFirstToActPreflop(p):
		// RFI ladder by effective-stack tier.
		effBB := gs.EffectiveStack(p) / game.BigBlind
		var first float64
		switch {
		case effBB < 25:
			first = 2.0
		case effBB < 35:
			first = 2.1
		default:
			first = 2.2
		}
		return []ActionSpec{
			{Kind: game.Raise, Value: first, Unit: BigBlinds},
			{Kind: game.Raise, Value: 2.5, Unit: BigBlinds},
			{Kind: game.Raise, Value: 3.0, Unit: BigBlinds},
		}
	case raises == 0 && limpers > 0 && hu && p == bbIdx:
		// HU BB's check-option facing a completed SB limp: same fixed
		// ladder as the SB's own first-in raise, not the multiway
		// isolation ladder.
		return []ActionSpec{
			{Kind: game.Raise, Value: 3.0, Unit: BigBlinds},
			{Kind: game.Raise, Value: 4.0, Unit: BigBlinds},
		}
	case raises == 0 && limpers > 0:
		// Isolation raise against N limpers.
		n := float64(limpers)
		return []ActionSpec{
			{Kind: game.Raise, Value: 3.0 + n, Unit: BigBlinds},
			{Kind: game.Raise, Value: 4.0 + n, Unit: BigBlinds},
		}
	case raises == 1 && hu && p == bbIdx && gs.Aggressor() == sbIdx:
		// HU BB facing the SB's open.
		return []ActionSpec{
			{Kind: game.Raise, Value: 3.0, Unit: MultiplierX},
			{Kind: game.Raise, Value: 4.0, Unit: MultiplierX},
		}
	case raises == 2:
		// Facing a 3-bet.
		return []ActionSpec{
			{Kind: game.Raise, Value: 2.5, Unit: MultiplierX},
		}
	default:
		// Facing an open outside HU (no extra raise spec beyond AllIn), or
		// facing a 4-bet or later (AllIn only).
		return nil
	}
}

func preflopBlindIndices(gs *game.GameState) (sb, bb int) {
	n := gs.NumPlayers()
	if n == 2 {
		return gs.Button(), (gs.Button() + 1) % n
	}
	return (gs.Button() + 1) % n, (gs.Button() + 2) % n
}

func postflopRaiseTable(gs *game.GameState) []ActionSpec {
	if gs.Aggressor() < 0 {
		return []ActionSpec{
			{Kind: game.Bet, Value: 33, Unit: PercentPot},
			{Kind: game.Bet, Value: 50, Unit: PercentPot},
			{Kind: game.Bet, Value: 75, Unit: PercentPot},
			{Kind: game.Bet, Value: 100, Unit: PercentPot},
			{Kind: game.Bet, Value: 133, Unit: PercentPot},
		}
	}
	return []ActionSpec{
		{Kind: game.Raise, Value: 2.2, Unit: MultiplierX},
		{Kind: game.Raise, Value: 3.0, Unit: MultiplierX},
	}
}

// GetPossibleActionSpecs returns the deduplicated, sorted set of abstracted
// actions available to the current player.
func GetPossibleActionSpecs(gs *game.GameState) []ActionSpec {
	p := gs.CurrentPlayer()
	if p < 0 || gs.Stack(p) <= 0 {
		return nil
	}
	amountToCall := gs.AmountToCall(p)
	stack := gs.Stack(p)

	var candidates []ActionSpec
	if amountToCall > 0 {
		candidates = append(candidates, ActionSpec{Kind: game.Fold})
	}
	if amountToCall == 0 {
		candidates = append(candidates, ActionSpec{Kind: game.Check})
	} else if stack >= amountToCall {
		candidates = append(candidates, ActionSpec{Kind: game.Call})
	}

	if stack > amountToCall {
		if gs.Street() == game.Preflop {
			candidates = append(candidates, preflopRaiseTable(gs)...)
		} else {
			candidates = append(candidates, postflopRaiseTable(gs)...)
		}
		if gs.Street() != game.Preflop || gs.RaisesThisStreet() >= 1 {
			candidates = append(candidates, ActionSpec{Kind: game.AllIn})
		}
	}

	sbIdx, _ := preflopBlindIndices(gs)
	if gs.Street() == game.Preflop && gs.NumPlayers() == 2 && p == sbIdx && gs.RaisesThisStreet() == 0 {
		filtered := candidates[:0]
		for _, c := range candidates {
			if c.Kind != game.Fold {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}

	return dedupAndFilter(candidates, gs)
}

type specAmount struct {
	spec   ActionSpec
	amount int64
}

func dedupAndFilter(candidates []ActionSpec, gs *game.GameState) []ActionSpec {
	p := gs.CurrentPlayer()
	allInAmount := int64(gs.Stack(p)) + int64(gs.BetThisRound(p))
	minLegalRaiseTotal := int64(gs.BetThisRound(p)) + int64(gs.AmountToCall(p)) + max64(int64(gs.LastRaiseSize()), int64(game.BigBlind))

	pairs := make([]specAmount, 0, len(candidates))
	for _, c := range candidates {
		amount := GetActionAmount(c, gs)
		if c.Kind == game.Bet || c.Kind == game.Raise {
			if amount < 0 || (amount < minLegalRaiseTotal && amount != allInAmount) {
				continue
			}
		}
		pairs = append(pairs, specAmount{spec: c, amount: amount})
	}

	byAmount := make(map[int64]specAmount)
	var order []int64
	for _, pa := range pairs {
		if pa.spec.Kind != game.Bet && pa.spec.Kind != game.Raise && pa.spec.Kind != game.AllIn {
			pairs2 := pa
			pairs2.amount = -int64(pa.spec.Kind) - 1000 // never collides with a betting amount
			byAmount[pairs2.amount] = pairs2
			order = append(order, pairs2.amount)
			continue
		}
		existing, ok := byAmount[pa.amount]
		if !ok {
			byAmount[pa.amount] = pa
			order = append(order, pa.amount)
			continue
		}
		// Prefer AllIn when two specs land on the same chip amount.
		if pa.spec.Kind == game.AllIn && existing.spec.Kind != game.AllIn {
			byAmount[pa.amount] = pa
		}
	}

	result := make([]ActionSpec, 0, len(order))
	for _, k := range order {
		result = append(result, byAmount[k].spec)
	}

	kindOrder := func(k game.ActionKind) int {
		switch k {
		case game.Fold:
			return 0
		case game.Check:
			return 1
		case game.Call:
			return 2
		case game.Bet, game.Raise:
			return 3
		case game.AllIn:
			return 4
		default:
			return 5
		}
	}
	amounts := make(map[ActionSpec]int64, len(result))
	for _, pa := range pairs {
		amounts[pa.spec] = pa.amount
	}
	sort.SliceStable(result, func(i, j int) bool {
		oi, oj := kindOrder(result[i].Kind), kindOrder(result[j].Kind)
		if oi != oj {
			return oi < oj
		}
		if oi == 3 {
			return amounts[result[i]] < amounts[result[j]]
		}
		return false
	})
	return result
}
