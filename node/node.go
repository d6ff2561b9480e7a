// Package node holds the per-infoset regret/strategy accumulators and the
// concurrent table that owns them. Nodes are heap-allocated once and never
// relocated, so a handle obtained from NodeTable stays valid for the life
// of the table even while other keys are being inserted concurrently.
package node

import (
	"fmt"
	"sync"
	"sync/atomic"

	"nlhe-solver/abstraction"
	"nlhe-solver/common/safemap"
)

// Node accumulates regret and strategy sums for one information set. The
// action count k is fixed at creation; RegretSum/StrategySum/LegalActions
// never change length afterward.
type Node struct {
	LegalActions []abstraction.ActionSpec

	mu          sync.Mutex
	RegretSum   []float64
	StrategySum []float64

	VisitCount atomic.Uint64
}

// New creates a node with k = len(legalActions) zeroed accumulators.
func New(legalActions []abstraction.ActionSpec) *Node {
	k := len(legalActions)
	return &Node{
		LegalActions: legalActions,
		RegretSum:    make([]float64, k),
		StrategySum:  make([]float64, k),
	}
}

// Lock/Unlock expose the node's own lock to the solver, which holds it only
// around the regret/strategy-sum read-modify-write; it is never held across
// a recursive call.
func (n *Node) Lock()   { n.mu.Lock() }
func (n *Node) Unlock() { n.mu.Unlock() }

// NodeTable is a concurrent map from infoset key to *Node, backed by the
// shared Safemap primitive so lookup/insert takes one short critical
// section; the per-node lock for regret/strategy updates is separate and
// finer-grained.
type NodeTable struct {
	nodes safemap.Safemap[string, *Node]
	count atomic.Int64
}

// NewTable creates an empty table.
func NewTable() *NodeTable {
	return &NodeTable{nodes: safemap.New[string, *Node]()}
}

// NodeMismatchError reports that an infoset key already has a node whose
// LegalActions length disagrees with the action set computed for this
// call. This means the abstraction produced a different action set for
// the same infoset key on two different calls, an abstraction bug, not a
// runtime condition to retry.
type NodeMismatchError struct {
	Key  string
	Have int
	Got  int
}

func (e *NodeMismatchError) Error() string {
	return fmt.Sprintf("node: action count mismatch for infoset %q: have %d, got %d", e.Key, e.Have, e.Got)
}

// GetOrCreate returns the node for key, building it with legalActions if
// this is the first visit. Exactly one *Node is built per key even under
// concurrent callers racing the same miss; callers that lose the race never
// build a node and return the winner's node instead.
//
// If a node already exists for key, its LegalActions length must match
// len(legalActions); a mismatch returns a *NodeMismatchError rather than
// panicking, so a caller mid-traversal can abort the current iteration and
// continue instead of taking down the whole process.
func (t *NodeTable) GetOrCreate(key string, legalActions []abstraction.ActionSpec) (*Node, error) {
	n, created := t.nodes.GetOrCreate(key, func() *Node { return New(legalActions) })
	if created {
		t.count.Add(1)
	}
	if len(n.LegalActions) != len(legalActions) {
		return nil, &NodeMismatchError{Key: key, Have: len(n.LegalActions), Got: len(legalActions)}
	}
	return n, nil
}

// Get returns the node for key without creating one, for read-only
// lookups such as post-training strategy queries.
func (t *NodeTable) Get(key string) (*Node, bool) {
	return t.nodes.Get(key)
}

// Count returns the number of distinct infosets visited so far.
func (t *NodeTable) Count() int64 { return t.count.Load() }

// Snapshot returns a copy of the (key, *Node) pairs currently in the
// table, taken under the map's read lock, so it may run alongside
// concurrent inserts (the training loop's periodic checkpoint does this).
// It takes no per-node lock: callers lock each node before reading its
// sums, and nodes inserted after the copy are not included.
func (t *NodeTable) Snapshot() map[string]*Node {
	out := make(map[string]*Node, t.nodes.Count())
	t.nodes.Foreach(func(k string, v *Node) {
		out[k] = v
	})
	return out
}

// Insert places a fully-formed node directly into the table, used by
// checkpoint loading to repopulate the table without going through
// GetOrCreate's building path.
func (t *NodeTable) Insert(key string, n *Node) {
	if !t.nodes.Exists(key) {
		t.count.Add(1)
	}
	t.nodes.Set(key, n)
}
