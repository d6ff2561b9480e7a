// Package solver implements the CFR+ / external-sampling MCCFR traversal:
// regret matching, the recursive tree walk with Monte-Carlo opponent
// sampling and full traverser expansion, and the outer training loop that
// fans iterations out across worker goroutines.
package solver

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync/atomic"

	"nlhe-solver/abstraction"
	"nlhe-solver/cards"
	"nlhe-solver/common/random"
	"nlhe-solver/game"
	"nlhe-solver/infoset"
	"nlhe-solver/node"
)

// Stats tracks the relaxed-order atomic counters shared across worker
// goroutines during training.
type Stats struct {
	CompletedIterations atomic.Int64
	MaxDepthReached      atomic.Int64
	LastLoggedPercent    atomic.Int64
}

// Solver owns the shared NodeTable and training statistics for one run.
type Solver struct {
	Table     *node.NodeTable
	Stats     *Stats
	actionSet *abstraction.Cache
}

// New creates a solver with a fresh, empty NodeTable.
func New() *Solver {
	return &Solver{Table: node.NewTable(), Stats: &Stats{}, actionSet: abstraction.NewCache()}
}

// FromTable wraps an existing NodeTable (as restored from a checkpoint)
// with fresh statistics.
func FromTable(table *node.NodeTable) *Solver {
	return &Solver{Table: table, Stats: &Stats{}, actionSet: abstraction.NewCache()}
}

const regretSumEpsilon = 1e-9

// RegretMatch converts accumulated regret into a strategy: the positive
// part of each regret, normalized; uniform if no regret is positive.
func RegretMatch(r []float64) []float64 {
	k := len(r)
	strategy := make([]float64, k)
	if k == 0 {
		return strategy
	}
	var sum float64
	for _, v := range r {
		if v > 0 {
			sum += v
		}
	}
	if sum > 0 {
		for i, v := range r {
			if v > 0 {
				strategy[i] = v / sum
			}
		}
	} else {
		uniform := 1.0 / float64(k)
		for i := range strategy {
			strategy[i] = uniform
		}
		return strategy
	}

	// Defend against floating-point drift across many accumulated updates.
	var total float64
	for _, v := range strategy {
		total += v
	}
	if total < regretSumEpsilon {
		uniform := 1.0 / float64(k)
		for i := range strategy {
			strategy[i] = uniform
		}
	} else if math.Abs(total-1) > regretSumEpsilon {
		for i := range strategy {
			strategy[i] /= total
		}
	}
	return strategy
}

func bumpMax(a *atomic.Int64, v int64) {
	for {
		cur := a.Load()
		if v <= cur {
			return
		}
		if a.CompareAndSwap(cur, v) {
			return
		}
	}
}

func applyAbstracted(parent, child *game.GameState, spec abstraction.ActionSpec, p int) error {
	amount := abstraction.GetActionAmount(spec, parent)
	action := game.Action{Kind: spec.Kind, Player: p}
	if amount >= 0 {
		action.Amount = int(amount)
	}
	return child.ApplyAction(action)
}

// dealOnTransition deals the community cards for an ordinary (non-terminal)
// street advance: 3 on Preflop->Flop, 1 on Flop->Turn, 1 on Turn->River.
// It is a no-op if the street did not change (round stayed open) or
// jumped straight to Showdown (handled by dealRemainingBoard instead).
func dealOnTransition(oldStreet game.Street, child *game.GameState, deck *cards.Deck, cardIdx *int) error {
	if child.Street() == oldStreet {
		return nil
	}
	var n int
	switch child.Street() {
	case game.Flop:
		if oldStreet == game.Preflop {
			n = 3
		}
	case game.Turn:
		if oldStreet == game.Flop {
			n = 1
		}
	case game.River:
		if oldStreet == game.Turn {
			n = 1
		}
	}
	if n == 0 {
		return nil
	}
	dealt, err := deck.DealAt(cardIdx, n)
	child.DealCommunityCards(dealt)
	return err
}

// dealRemainingBoard completes the board to 5 cards before settling a
// terminal state reached early (an all-in with no further action
// possible leaves the board short of the river).
func dealRemainingBoard(gs *game.GameState, deck *cards.Deck, cardIdx *int) error {
	need := 5 - len(gs.Board())
	if need <= 0 {
		return nil
	}
	dealt, err := deck.DealAt(cardIdx, need)
	gs.DealCommunityCards(dealt)
	return err
}

// CFRRecurse walks the abstracted game tree from gs, returning the utility
// of the subtree for traverser under the current strategies. reach holds
// each player's probability of reaching gs along the sampled trajectory so
// far. deck and cardIdx are the thread-local shuffled deck and dealing
// cursor shared by the whole iteration.
func (s *Solver) CFRRecurse(gs *game.GameState, traverser int, reach []float64, deck *cards.Deck, cardIdx *int, rng *rand.Rand, depth int) (float64, error) {
	bumpMax(&s.Stats.MaxDepthReached, int64(depth))

	if gs.IsTerminal() {
		if err := dealRemainingBoard(gs, deck, cardIdx); err != nil {
			log.Printf("warn: solver: deck exhausted dealing runout board at depth %d", depth)
			return 0, nil
		}
		payoff, err := gs.Payoff()
		if err != nil {
			return 0, fmt.Errorf("solver: settling terminal state: %w", err)
		}
		return payoff[traverser], nil
	}

	p := gs.CurrentPlayer()
	if p < 0 || gs.Folded(p) {
		return 0, nil
	}

	legalActions := s.actionSet.Get(gs, infoset.ContextKey(gs))
	if len(legalActions) == 0 {
		return 0, nil
	}

	key := infoset.Key(gs, p)
	n, err := s.Table.GetOrCreate(key, legalActions)
	if err != nil {
		return 0, fmt.Errorf("solver: fetching node at depth %d: %w", depth, err)
	}
	legalActions = n.LegalActions

	n.Lock()
	rLocal := append([]float64(nil), n.RegretSum...)
	n.Unlock()
	sigma := RegretMatch(rLocal)

	if p != traverser {
		return s.recurseOpponent(gs, p, sigma, legalActions, traverser, reach, deck, cardIdx, rng, depth)
	}
	return s.recurseTraverser(gs, p, n, sigma, legalActions, traverser, reach, deck, cardIdx, rng, depth)
}

func (s *Solver) recurseOpponent(gs *game.GameState, p int, sigma []float64, legalActions []abstraction.ActionSpec, traverser int, reach []float64, deck *cards.Deck, cardIdx *int, rng *rand.Rand, depth int) (float64, error) {
	j, err := random.SampleIndex(rng, sigma)
	if err != nil {
		j = rng.Intn(len(sigma))
	}
	if sigma[j] < regretSumEpsilon {
		return 0, nil
	}
	weight := math.Min(100, 1/sigma[j])

	child := gs.Clone()
	if err := applyAbstracted(gs, child, legalActions[j], p); err != nil {
		return 0, fmt.Errorf("solver: applying sampled opponent action: %w", err)
	}
	if err := dealOnTransition(gs.Street(), child, deck, cardIdx); err != nil {
		log.Printf("warn: solver: deck exhausted dealing %s at depth %d", child.Street(), depth)
		return 0, nil
	}

	childReach := append([]float64(nil), reach...)
	childReach[p] *= sigma[j]
	u, err := s.CFRRecurse(child, traverser, childReach, deck, cardIdx, rng, depth+1)
	if err != nil {
		return 0, err
	}
	return -u * weight, nil
}

func (s *Solver) recurseTraverser(gs *game.GameState, p int, n *node.Node, sigma []float64, legalActions []abstraction.ActionSpec, traverser int, reach []float64, deck *cards.Deck, cardIdx *int, rng *rand.Rand, depth int) (float64, error) {
	u := make([]float64, len(legalActions))
	for i, spec := range legalActions {
		saved := *cardIdx
		child := gs.Clone()
		if err := applyAbstracted(gs, child, spec, p); err != nil {
			return 0, fmt.Errorf("solver: applying traverser action %s: %w", spec, err)
		}
		if err := dealOnTransition(gs.Street(), child, deck, cardIdx); err != nil {
			log.Printf("warn: solver: deck exhausted dealing %s at depth %d", child.Street(), depth)
			u[i] = 0
			*cardIdx = saved
			continue
		}
		cu, err := s.CFRRecurse(child, traverser, reach, deck, cardIdx, rng, depth+1)
		if err != nil {
			return 0, err
		}
		u[i] = -cu
		*cardIdx = saved
	}

	var nodeUtility float64
	for i, ui := range u {
		nodeUtility += sigma[i] * ui
	}

	cfrReach := 1.0
	for i, r := range reach {
		if i != p {
			cfrReach *= r
		}
	}

	n.Lock()
	if cfrReach > regretSumEpsilon {
		for i := range n.RegretSum {
			delta := cfrReach * (u[i] - nodeUtility)
			if math.IsNaN(delta) || math.IsInf(delta, 0) {
				continue
			}
			n.RegretSum[i] += delta
			if n.RegretSum[i] < 0 {
				n.RegretSum[i] = 0
			}
		}
	}
	if reach[p] > regretSumEpsilon {
		for i := range n.StrategySum {
			delta := reach[p] * sigma[i]
			if math.IsNaN(delta) || math.IsInf(delta, 0) {
				continue
			}
			n.StrategySum[i] += delta
		}
	}
	n.Unlock()
	n.VisitCount.Add(1)

	return nodeUtility, nil
}

// GetStrategyInfo looks up the average strategy for an infoset key, or
// reports found=false if it was never visited.
func (s *Solver) GetStrategyInfo(key string) (found bool, strategy []float64, actions []abstraction.ActionSpec) {
	n, ok := s.Table.Get(key)
	if !ok {
		return false, nil, nil
	}
	n.Lock()
	defer n.Unlock()
	k := len(n.StrategySum)
	var total float64
	for _, v := range n.StrategySum {
		total += v
	}
	avg := make([]float64, k)
	if total < regretSumEpsilon {
		uniform := 1.0 / float64(k)
		for i := range avg {
			avg[i] = uniform
		}
	} else {
		for i, v := range n.StrategySum {
			avg[i] = v / total
		}
	}
	return true, avg, n.LegalActions
}
