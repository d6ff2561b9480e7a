// Package checkpoint saves and loads a NodeTable's full state to a binary
// file: version-gated, little-endian, atomic-rename on save, and strict
// rejection of truncated or version-mismatched input on load.
package checkpoint

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"nlhe-solver/abstraction"
	"nlhe-solver/game"
	"nlhe-solver/node"
)

// Version is the current checkpoint format version. Files written by an
// incompatible version are rejected outright, never partially parsed.
const Version uint32 = 4

var byteOrder = binary.LittleEndian

// Save writes table's full state to path, going through a ".tmp" sibling
// file first and renaming it into place so a crash mid-write never
// corrupts a previously-good checkpoint.
func Save(path string, table *node.NodeTable, completedIterations int32, totalNodesCreated int64) error {
	return save(path, path+".tmp", table, completedIterations, totalNodesCreated)
}

// SaveFinal is Save with the ".final.tmp" staging suffix the training loop
// uses for its last checkpoint, distinct from periodic saves so a
// concurrent periodic save can never collide with it.
func SaveFinal(path string, table *node.NodeTable, completedIterations int32, totalNodesCreated int64) error {
	return save(path, path+".final.tmp", table, completedIterations, totalNodesCreated)
}

func save(path, tmp string, table *node.NodeTable, completedIterations int32, totalNodesCreated int64) error {
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("checkpoint: create temp file: %w", err)
	}
	w := bufio.NewWriter(f)

	snapshot := table.Snapshot()
	if err := writeHeader(w, completedIterations, uint64(len(snapshot))); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	for key, n := range snapshot {
		if err := writeNode(w, key, n); err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
	}
	if err := binary.Write(w, byteOrder, totalNodesCreated); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("checkpoint: write total_nodes_created: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("checkpoint: flush: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("checkpoint: close: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("checkpoint: rename into place: %w", err)
	}
	return nil
}

func writeHeader(w io.Writer, completedIterations int32, nodeCount uint64) error {
	if err := binary.Write(w, byteOrder, Version); err != nil {
		return fmt.Errorf("checkpoint: write version: %w", err)
	}
	if err := binary.Write(w, byteOrder, completedIterations); err != nil {
		return fmt.Errorf("checkpoint: write completed_iterations: %w", err)
	}
	if err := binary.Write(w, byteOrder, nodeCount); err != nil {
		return fmt.Errorf("checkpoint: write node_count: %w", err)
	}
	return nil
}

func writeNode(w io.Writer, key string, n *node.Node) error {
	keyBytes := []byte(key)
	if err := binary.Write(w, byteOrder, uint64(len(keyBytes))); err != nil {
		return fmt.Errorf("checkpoint: write key_len: %w", err)
	}
	if _, err := w.Write(keyBytes); err != nil {
		return fmt.Errorf("checkpoint: write key_bytes: %w", err)
	}

	n.Lock()
	actions := n.LegalActions
	regret := append([]float64(nil), n.RegretSum...)
	strategy := append([]float64(nil), n.StrategySum...)
	n.Unlock()

	if err := binary.Write(w, byteOrder, uint64(len(actions))); err != nil {
		return fmt.Errorf("checkpoint: write action_count: %w", err)
	}
	for _, a := range actions {
		if err := binary.Write(w, byteOrder, int32(a.Kind)); err != nil {
			return fmt.Errorf("checkpoint: write action_kind: %w", err)
		}
		if err := binary.Write(w, byteOrder, a.Value); err != nil {
			return fmt.Errorf("checkpoint: write action value: %w", err)
		}
		if err := binary.Write(w, byteOrder, int32(a.Unit)); err != nil {
			return fmt.Errorf("checkpoint: write action unit: %w", err)
		}
	}
	if err := binary.Write(w, byteOrder, regret); err != nil {
		return fmt.Errorf("checkpoint: write regret_sum: %w", err)
	}
	if err := binary.Write(w, byteOrder, strategy); err != nil {
		return fmt.Errorf("checkpoint: write strategy_sum: %w", err)
	}
	if err := binary.Write(w, byteOrder, int32(n.VisitCount.Load())); err != nil {
		return fmt.Errorf("checkpoint: write visit_count: %w", err)
	}
	return nil
}

// Load reads a checkpoint written by Save, rejecting version mismatch or
// truncation, and returns a fresh NodeTable plus the iteration count and
// total-nodes-created counter it was saved with.
func Load(path string) (table *node.NodeTable, completedIterations int32, totalNodesCreated int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("checkpoint: open: %w", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var version uint32
	if err := binary.Read(r, byteOrder, &version); err != nil {
		return nil, 0, 0, fmt.Errorf("checkpoint: read version: %w", err)
	}
	if version != Version {
		return nil, 0, 0, fmt.Errorf("checkpoint: version mismatch: file has %d, want %d", version, Version)
	}
	if err := binary.Read(r, byteOrder, &completedIterations); err != nil {
		return nil, 0, 0, fmt.Errorf("checkpoint: read completed_iterations: %w", err)
	}
	var nodeCount uint64
	if err := binary.Read(r, byteOrder, &nodeCount); err != nil {
		return nil, 0, 0, fmt.Errorf("checkpoint: read node_count: %w", err)
	}

	table = node.NewTable()
	for i := uint64(0); i < nodeCount; i++ {
		key, n, err := readNode(r)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("checkpoint: reading node %d/%d: %w", i, nodeCount, err)
		}
		table.Insert(key, n)
	}
	if uint64(table.Count()) != nodeCount {
		return nil, 0, 0, fmt.Errorf("checkpoint: node count mismatch: header says %d, read %d", nodeCount, table.Count())
	}
	if err := binary.Read(r, byteOrder, &totalNodesCreated); err != nil {
		return nil, 0, 0, fmt.Errorf("checkpoint: read total_nodes_created: %w", err)
	}
	return table, completedIterations, totalNodesCreated, nil
}

func readNode(r io.Reader) (string, *node.Node, error) {
	var keyLen uint64
	if err := binary.Read(r, byteOrder, &keyLen); err != nil {
		return "", nil, fmt.Errorf("key_len: %w", err)
	}
	keyBytes := make([]byte, keyLen)
	if _, err := io.ReadFull(r, keyBytes); err != nil {
		return "", nil, fmt.Errorf("key_bytes: %w", err)
	}

	var actionCount uint64
	if err := binary.Read(r, byteOrder, &actionCount); err != nil {
		return "", nil, fmt.Errorf("action_count: %w", err)
	}
	actions := make([]abstraction.ActionSpec, actionCount)
	for i := range actions {
		var kind int32
		var value float64
		var unit int32
		if err := binary.Read(r, byteOrder, &kind); err != nil {
			return "", nil, fmt.Errorf("action_kind: %w", err)
		}
		if err := binary.Read(r, byteOrder, &value); err != nil {
			return "", nil, fmt.Errorf("action value: %w", err)
		}
		if err := binary.Read(r, byteOrder, &unit); err != nil {
			return "", nil, fmt.Errorf("action unit: %w", err)
		}
		actions[i] = abstraction.ActionSpec{Kind: actionKindFromInt(kind), Value: value, Unit: unitFromInt(unit)}
	}

	n := node.New(actions)
	if err := binary.Read(r, byteOrder, n.RegretSum); err != nil {
		return "", nil, fmt.Errorf("regret_sum: %w", err)
	}
	if err := binary.Read(r, byteOrder, n.StrategySum); err != nil {
		return "", nil, fmt.Errorf("strategy_sum: %w", err)
	}
	var visitCount int32
	if err := binary.Read(r, byteOrder, &visitCount); err != nil {
		return "", nil, fmt.Errorf("visit_count: %w", err)
	}
	n.VisitCount.Store(uint64(visitCount))
	return string(keyBytes), n, nil
}

func actionKindFromInt(v int32) game.ActionKind { return game.ActionKind(v) }
func unitFromInt(v int32) abstraction.Unit      { return abstraction.Unit(v) }
