package node

import (
	"errors"
	"sync"
	"testing"

	"nlhe-solver/abstraction"
	"nlhe-solver/game"
)

func twoActions() []abstraction.ActionSpec {
	return []abstraction.ActionSpec{
		{Kind: game.Fold},
		{Kind: game.Call},
	}
}

func TestGetOrCreateBuildsOnce(t *testing.T) {
	table := NewTable()
	n1, err := table.GetOrCreate("k", twoActions())
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	n2, err := table.GetOrCreate("k", twoActions())
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if n1 != n2 {
		t.Errorf("expected the same node pointer on repeated GetOrCreate for the same key")
	}
	if table.Count() != 1 {
		t.Errorf("expected 1 node, got %d", table.Count())
	}
}

func TestGetOrCreateConcurrentBuildsExactlyOne(t *testing.T) {
	table := NewTable()
	const workers = 64
	var wg sync.WaitGroup
	nodes := make([]*Node, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			n, err := table.GetOrCreate("shared", twoActions())
			if err != nil {
				t.Errorf("GetOrCreate: %v", err)
				return
			}
			nodes[idx] = n
		}(i)
	}
	wg.Wait()
	for i := 1; i < workers; i++ {
		if nodes[i] != nodes[0] {
			t.Fatalf("concurrent GetOrCreate returned different node pointers for the same key")
		}
	}
	if table.Count() != 1 {
		t.Errorf("expected exactly 1 node created under contention, got %d", table.Count())
	}
}

func TestGetOrCreateMismatchedActionCountReturnsError(t *testing.T) {
	table := NewTable()
	if _, err := table.GetOrCreate("k", twoActions()); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	_, err := table.GetOrCreate("k", []abstraction.ActionSpec{{Kind: game.Fold}})
	if err == nil {
		t.Fatalf("expected an error on mismatched action count for an existing key")
	}
	var mismatch *NodeMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("expected a *NodeMismatchError, got %T", err)
	}
}

func TestGetMissingKey(t *testing.T) {
	table := NewTable()
	if _, ok := table.Get("missing"); ok {
		t.Errorf("expected Get on an absent key to report not-found")
	}
}

func TestVisitCountIsAtomicAcrossGoroutines(t *testing.T) {
	n := New(twoActions())
	const workers = 100
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.VisitCount.Add(1)
		}()
	}
	wg.Wait()
	if n.VisitCount.Load() != uint64(workers) {
		t.Errorf("expected visit count %d, got %d", workers, n.VisitCount.Load())
	}
}
