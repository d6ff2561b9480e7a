// Package game implements the No-Limit Hold'em rules engine: blind and
// ante posting, betting-round closure, street advancement, and side-pot
// aware showdown settlement. It is the single source of truth for game
// legality; ActionAbstraction only proposes sizings, it never enforces
// them.
package game

import (
	"fmt"
	"sort"
	"strconv"

	"nlhe-solver/cards"
	"nlhe-solver/handeval"
)

// BigBlind and SmallBlind are fixed chip denominations: stacks, antes, and
// all sizing are expressed in these half-blind units (1 BB = 2 chips).
const (
	BigBlind   = 2
	SmallBlind = 1
)

// IllegalActionError reports a rules violation in ApplyAction. Per the
// error-handling design, this is a fatal abstraction/logic bug: the
// caller should abort the current traversal branch and log the error, not
// retry.
type IllegalActionError struct {
	Reason string
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("illegal action: %s", e.Reason)
}

// GameState is the rules engine's mutable state for one hand. It is
// created fresh at the root of every solver iteration, mutated in place
// along a single trajectory, and cloned before each recursive branch.
type GameState struct {
	numPlayers int
	button     int
	anteSize   int

	initialStack  []int
	stack         []int
	betsThisRound []int
	folded        []bool
	allIn         []bool
	acted         []bool

	street           Street
	currentPlayer    int
	lastRaiseSize    int
	aggressor        int // -1 if none
	raisesThisStreet int
	gameOver         bool

	hole  [][2]cards.Card
	board []cards.Card

	history string
}

// New constructs a GameState at the start of a hand: antes are deducted,
// blinds are posted, and the first actor is determined.
func New(numPlayers, initialStack, anteSize, button int) (*GameState, error) {
	if numPlayers < 2 {
		return nil, fmt.Errorf("game: num_players must be >= 2, got %d", numPlayers)
	}
	if button < 0 || button >= numPlayers {
		return nil, fmt.Errorf("game: button %d out of range for %d players", button, numPlayers)
	}
	if initialStack < 0 || anteSize < 0 {
		return nil, fmt.Errorf("game: stack and ante must be non-negative")
	}

	gs := &GameState{
		numPlayers:    numPlayers,
		button:        button,
		anteSize:      anteSize,
		initialStack:  make([]int, numPlayers),
		stack:         make([]int, numPlayers),
		betsThisRound: make([]int, numPlayers),
		folded:        make([]bool, numPlayers),
		allIn:         make([]bool, numPlayers),
		acted:         make([]bool, numPlayers),
		street:        Preflop,
		lastRaiseSize: BigBlind,
		aggressor:     -1,
		hole:          make([][2]cards.Card, numPlayers),
	}
	for i := range gs.stack {
		gs.initialStack[i] = initialStack
		gs.stack[i] = initialStack
	}

	// Antes, capped at stack.
	for i := 0; i < numPlayers; i++ {
		gs.commit(i, anteSize)
	}
	// Antes are not voluntary bets and do not count toward the current
	// street's bet-to-match; sweep them immediately.
	for i := range gs.betsThisRound {
		gs.betsThisRound[i] = 0
	}

	var sb, bb int
	if numPlayers == 2 {
		sb = button
		bb = (button + 1) % numPlayers
	} else {
		sb = (button + 1) % numPlayers
		bb = (button + 2) % numPlayers
	}
	gs.commit(sb, SmallBlind)
	gs.commit(bb, BigBlind)
	gs.history = "s/b/"

	gs.lastRaiseSize = BigBlind
	gs.aggressor = bb

	if numPlayers == 2 {
		gs.currentPlayer = sb
	} else {
		gs.currentPlayer = gs.nextAfter((bb+1)%numPlayers, true)
	}
	if gs.currentPlayer == -1 {
		gs.gameOver = true
		gs.street = Showdown
	}
	return gs, nil
}

// commit deducts amount from player i's stack (capped at the remaining
// stack), crediting it to bets_this_round, and marks the player all-in if
// their stack reaches zero.
func (gs *GameState) commit(i, amount int) int {
	delta := amount
	if delta > gs.stack[i] {
		delta = gs.stack[i]
	}
	gs.stack[i] -= delta
	gs.betsThisRound[i] += delta
	if gs.stack[i] == 0 {
		gs.allIn[i] = true
	}
	return delta
}

// nextAfter scans forward from idx (inclusive when includeIdx) for the
// next unfolded, non-all-in player. It returns -1 if none exists.
func (gs *GameState) nextAfter(idx int, includeIdx bool) int {
	start := idx
	if !includeIdx {
		start = (idx + 1) % gs.numPlayers
	}
	for i := 0; i < gs.numPlayers; i++ {
		p := (start + i) % gs.numPlayers
		if !gs.folded[p] && !gs.allIn[p] {
			return p
		}
	}
	return -1
}

// --- Getters ---

func (gs *GameState) NumPlayers() int       { return gs.numPlayers }
func (gs *GameState) Button() int           { return gs.button }
func (gs *GameState) CurrentPlayer() int    { return gs.currentPlayer }
func (gs *GameState) Street() Street        { return gs.street }
func (gs *GameState) Stack(i int) int       { return gs.stack[i] }
func (gs *GameState) BetThisRound(i int) int { return gs.betsThisRound[i] }
func (gs *GameState) Folded(i int) bool     { return gs.folded[i] }
func (gs *GameState) AllIn(i int) bool      { return gs.allIn[i] }
func (gs *GameState) LastRaiseSize() int    { return gs.lastRaiseSize }
func (gs *GameState) Aggressor() int        { return gs.aggressor }
func (gs *GameState) History() string       { return gs.history }
func (gs *GameState) Board() []cards.Card   { return gs.board }
func (gs *GameState) Hole(i int) [2]cards.Card { return gs.hole[i] }
func (gs *GameState) AnteSize() int         { return gs.anteSize }

// Contribution is the total chips player i has put into the pot this hand
// (antes + blinds + voluntary bets): initial_stack[i] - stack[i].
func (gs *GameState) Contribution(i int) int {
	return gs.initialStack[i] - gs.stack[i]
}

// Pot is the total chips contributed by all players so far this hand.
func (gs *GameState) Pot() int {
	total := 0
	for i := range gs.stack {
		total += gs.Contribution(i)
	}
	return total
}

// MaxBet is the largest bets_this_round value, i.e. the bet every active
// player must match to stay in the hand.
func (gs *GameState) MaxBet() int {
	max := 0
	for _, b := range gs.betsThisRound {
		if b > max {
			max = b
		}
	}
	return max
}

// AmountToCall is the chips player i must add to match the current bet,
// capped at their remaining stack.
func (gs *GameState) AmountToCall(i int) int {
	need := gs.MaxBet() - gs.betsThisRound[i]
	if need < 0 {
		need = 0
	}
	if need > gs.stack[i] {
		return gs.stack[i]
	}
	return need
}

// ReferenceBet is the opponent's last aggressive total this street (the
// opener's total preflop, or the last bet/raise total postflop), used by
// ActionAbstraction's MultiplierX sizing. It is 0 if no one has bet yet.
func (gs *GameState) ReferenceBet() int {
	if gs.aggressor < 0 {
		return 0
	}
	return gs.betsThisRound[gs.aggressor]
}

// EffectiveStack is the smaller of player i's stack and the largest stack
// among the other active (unfolded, non-all-in) players — i.e. the most
// that can actually change hands between them.
func (gs *GameState) EffectiveStack(i int) int {
	total := func(p int) int { return gs.stack[p] + gs.betsThisRound[p] }
	eff := total(i)
	largest := -1
	for p := 0; p < gs.numPlayers; p++ {
		if p == i || gs.folded[p] || gs.allIn[p] {
			continue
		}
		if total(p) > largest {
			largest = total(p)
		}
	}
	if largest >= 0 && largest < eff {
		eff = largest
	}
	return eff
}

// RaisesThisStreet counts Bet/Raise/AllIn-as-raise actions recorded in the
// history since the current street began.
func (gs *GameState) RaisesThisStreet() int {
	return gs.raisesThisStreet
}

// NumLimpers counts players who have called (without raising) preflop
// before the current player, with no raise yet this street.
func (gs *GameState) NumLimpers() int {
	if gs.street != Preflop || gs.aggressor != gs.bbIndex() {
		return 0
	}
	n := 0
	for i := 0; i < gs.numPlayers; i++ {
		if i == gs.bbIndex() {
			continue
		}
		if !gs.folded[i] && gs.betsThisRound[i] == gs.MaxBet() && gs.betsThisRound[i] > 0 && gs.acted[i] {
			n++
		}
	}
	return n
}

func (gs *GameState) bbIndex() int {
	if gs.numPlayers == 2 {
		return (gs.button + 1) % gs.numPlayers
	}
	return (gs.button + 2) % gs.numPlayers
}

func (gs *GameState) sbIndex() int {
	if gs.numPlayers == 2 {
		return gs.button
	}
	return (gs.button + 1) % gs.numPlayers
}

// IsFirstToActPreflop reports whether player i would be opening the
// action preflop (no voluntary bet or raise has occurred yet).
func (gs *GameState) IsFirstToActPreflop(i int) bool {
	return gs.street == Preflop && gs.aggressor == gs.bbIndex() && gs.raisesThisStreet == 0
}

// IsTerminal reports whether the hand has ended.
func (gs *GameState) IsTerminal() bool {
	return gs.gameOver || gs.unfoldedCount() <= 1 || gs.street == Showdown
}

func (gs *GameState) unfoldedCount() int {
	n := 0
	for _, f := range gs.folded {
		if !f {
			n++
		}
	}
	return n
}

// EligibleActorsRemaining counts unfolded, non-all-in players: those who
// could still make a decision.
func (gs *GameState) EligibleActorsRemaining() int {
	n := 0
	for i := 0; i < gs.numPlayers; i++ {
		if !gs.folded[i] && !gs.allIn[i] {
			n++
		}
	}
	return n
}

// Clone returns an independent copy for branching the tree.
func (gs *GameState) Clone() *GameState {
	cp := *gs
	cp.initialStack = append([]int(nil), gs.initialStack...)
	cp.stack = append([]int(nil), gs.stack...)
	cp.betsThisRound = append([]int(nil), gs.betsThisRound...)
	cp.folded = append([]bool(nil), gs.folded...)
	cp.allIn = append([]bool(nil), gs.allIn...)
	cp.acted = append([]bool(nil), gs.acted...)
	cp.hole = append([][2]cards.Card(nil), gs.hole...)
	cp.board = append([]cards.Card(nil), gs.board...)
	return &cp
}

// DealHoleCards assigns each player's two-card hand. Hands are stored
// sorted by card index so that suit permutations collapse in the infoset
// key.
func (gs *GameState) DealHoleCards(hands [][2]cards.Card) {
	for i, h := range hands {
		pair := []cards.Card{h[0], h[1]}
		cards.SortCards(pair)
		gs.hole[i] = [2]cards.Card{pair[0], pair[1]}
	}
}

// DealCommunityCards appends cards to the board. It does not validate
// street alignment: the caller (the solver) is responsible for dealing
// the right count at the right time, including the multi-card runout
// dealt in one shot when the hand reaches an early all-in showdown.
func (gs *GameState) DealCommunityCards(dealt []cards.Card) {
	gs.board = append(gs.board, dealt...)
}

// ApplyAction validates and applies a action, then performs round closure
// and, if the round closed without reaching showdown, advances the
// street.
func (gs *GameState) ApplyAction(a Action) error {
	if gs.IsTerminal() {
		return &IllegalActionError{Reason: "state is terminal"}
	}
	p := a.Player
	if p != gs.currentPlayer {
		return &IllegalActionError{Reason: fmt.Sprintf("action for player %d, but it is player %d's turn", p, gs.currentPlayer)}
	}
	if gs.folded[p] || gs.allIn[p] {
		return &IllegalActionError{Reason: fmt.Sprintf("player %d cannot act (folded=%v all_in=%v)", p, gs.folded[p], gs.allIn[p])}
	}

	switch a.Kind {
	case Fold:
		gs.folded[p] = true
		gs.history += "f/"
	case Check:
		if gs.AmountToCall(p) != 0 {
			return &IllegalActionError{Reason: "check while facing a bet"}
		}
		gs.acted[p] = true
		gs.history += "k/"
	case Call:
		delta := gs.AmountToCall(p)
		gs.stack[p] -= delta
		gs.betsThisRound[p] += delta
		if gs.stack[p] == 0 {
			gs.allIn[p] = true
		}
		gs.acted[p] = true
		gs.history += "c/"
	case Bet, Raise, AllIn:
		if err := gs.applyAggressiveAction(a); err != nil {
			return err
		}
	default:
		return &IllegalActionError{Reason: "unknown action kind"}
	}

	if gs.IsTerminal() {
		return nil
	}
	if gs.roundClosed() {
		gs.closeRound()
	} else {
		gs.currentPlayer = gs.nextAfter(p, false)
	}
	return nil
}

func (gs *GameState) applyAggressiveAction(a Action) error {
	p := a.Player
	facingBet := gs.AmountToCall(p) > 0

	total := a.Amount
	if a.Kind == AllIn {
		total = gs.stack[p] + gs.betsThisRound[p]
	}
	delta := total - gs.betsThisRound[p]
	if delta <= 0 {
		return &IllegalActionError{Reason: "bet/raise amount does not exceed current commitment"}
	}

	isAllIn := a.Kind == AllIn
	if delta >= gs.stack[p] {
		delta = gs.stack[p]
		total = gs.betsThisRound[p] + delta
		isAllIn = true
	}

	raiseIncrement := total - (gs.betsThisRound[p] + gs.AmountToCall(p))
	minIncrement := gs.lastRaiseSize
	if minIncrement < BigBlind {
		minIncrement = BigBlind
	}
	if raiseIncrement < minIncrement && !isAllIn {
		return &IllegalActionError{Reason: fmt.Sprintf("raise increment %d below minimum %d", raiseIncrement, minIncrement)}
	}

	gs.stack[p] -= delta
	gs.betsThisRound[p] += delta
	if gs.stack[p] == 0 {
		gs.allIn[p] = true
	}
	gs.lastRaiseSize = raiseIncrement
	gs.aggressor = p
	for i := range gs.acted {
		gs.acted[i] = false
	}
	gs.acted[p] = true
	gs.raisesThisStreet++

	token := "b"
	if facingBet {
		token = "r"
	}
	gs.history += token + strconv.Itoa(total) + "/"
	return nil
}

// closeRound terminates the hand or advances to the next street. Callers
// must already know the round is closed (see roundClosed).
func (gs *GameState) closeRound() {
	if gs.unfoldedCount() <= 1 {
		gs.gameOver = true
		gs.street = Showdown
		return
	}
	if gs.street == River {
		gs.gameOver = true
		gs.street = Showdown
		return
	}
	if gs.EligibleActorsRemaining() <= 1 {
		gs.gameOver = true
		gs.street = Showdown
		return
	}
	gs.advanceToNextStreet()
}

func (gs *GameState) roundClosed() bool {
	if gs.unfoldedCount() <= 1 {
		return true
	}
	maxBet := gs.MaxBet()
	for i := 0; i < gs.numPlayers; i++ {
		if gs.folded[i] || gs.allIn[i] {
			continue
		}
		if gs.betsThisRound[i] != maxBet || !gs.acted[i] {
			return false
		}
	}
	return true
}

// AdvanceToNextStreet clears per-street betting state and moves to the
// next street, choosing the first actor, without going through
// ApplyAction. Nothing in this repository calls it: ApplyAction advances
// streets itself, and the solver completes an early all-in board by
// dealing cards only.
func (gs *GameState) AdvanceToNextStreet() {
	gs.advanceToNextStreet()
}

func (gs *GameState) advanceToNextStreet() {
	for i := range gs.betsThisRound {
		gs.betsThisRound[i] = 0
	}
	gs.lastRaiseSize = BigBlind
	gs.aggressor = -1
	gs.raisesThisStreet = 0
	for i := range gs.acted {
		gs.acted[i] = false
	}
	gs.street++

	var first int
	if gs.numPlayers == 2 {
		first = gs.nextAfter(gs.button, true)
	} else {
		first = gs.nextAfter((gs.button+1)%gs.numPlayers, true)
	}
	if first == -1 {
		gs.gameOver = true
		gs.street = Showdown
		return
	}
	gs.currentPlayer = first
}

// Payoff settles a terminal state and returns each player's net result
// (winnings minus contribution, or negative contribution for losers).
// The board must be complete (5 cards) unless only one player remains
// unfolded; an incomplete board with more than one contestant is a
// degenerate call and returns all zeros.
func (gs *GameState) Payoff() ([]float64, error) {
	if !gs.IsTerminal() {
		return nil, fmt.Errorf("game: Payoff called on non-terminal state")
	}
	payoff := make([]float64, gs.numPlayers)
	contribution := make([]int, gs.numPlayers)
	for i := range contribution {
		contribution[i] = gs.Contribution(i)
	}

	eligible := make([]int, 0, gs.numPlayers)
	for i := 0; i < gs.numPlayers; i++ {
		if !gs.folded[i] {
			eligible = append(eligible, i)
		}
	}

	if len(eligible) == 1 {
		winner := eligible[0]
		total := 0
		for _, c := range contribution {
			total += c
		}
		payoff[winner] = float64(total - contribution[winner])
		for i := range payoff {
			if i != winner {
				payoff[i] = -float64(contribution[i])
			}
		}
		return payoff, nil
	}

	if len(gs.board) < 5 {
		return payoff, nil
	}

	sort.Slice(eligible, func(a, b int) bool {
		return contribution[eligible[a]] < contribution[eligible[b]]
	})

	ranks := make(map[int]uint16, len(eligible))
	board5 := BoardCards(gs.board)
	for _, p := range eligible {
		ranks[p] = handeval.Rank7(gs.hole[p], board5)
	}

	remaining := append([]int(nil), eligible...)
	prevLevel := 0
	for len(remaining) > 0 {
		level := contribution[remaining[0]]
		potL := (level - prevLevel) * len(remaining)
		prevLevel = level

		bestRank := ranks[remaining[0]]
		for _, p := range remaining {
			if ranks[p] < bestRank {
				bestRank = ranks[p]
			}
		}
		var winners []int
		for _, p := range remaining {
			if ranks[p] == bestRank {
				winners = append(winners, p)
			}
		}
		share := potL / len(winners)
		remainder := potL - share*len(winners)
		for _, w := range winners {
			payoff[w] += float64(share)
		}
		if remainder > 0 {
			seat := earliestLeftOfButton(winners, gs.button, gs.numPlayers)
			payoff[seat] += float64(remainder)
		}

		next := remaining[:0:0]
		for _, p := range remaining {
			if contribution[p] > level {
				next = append(next, p)
			}
		}
		remaining = next
	}

	for i := range payoff {
		payoff[i] -= float64(contribution[i])
	}
	return payoff, nil
}

// earliestLeftOfButton returns the seat among candidates that sits
// earliest clockwise from the button, used as the odd-chip tie-breaker.
func earliestLeftOfButton(candidates []int, button, numPlayers int) int {
	best := candidates[0]
	bestDist := (best - button - 1 + numPlayers) % numPlayers
	for _, c := range candidates[1:] {
		d := (c - button - 1 + numPlayers) % numPlayers
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}
