package solver

import (
	"log"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"nlhe-solver/cards"
	"nlhe-solver/checkpoint"
	"nlhe-solver/game"
)

// TrainConfig is the input to Train: everything needed to run (or resume)
// a training session.
type TrainConfig struct {
	Iterations   int
	NumPlayers   int
	InitialStack int
	Ante         int
	NumThreads   int
	SavePath     string
	Interval     int
	LoadPath     string
}

func clampThreads(requested int) int {
	hw := runtime.GOMAXPROCS(0)
	if requested <= 0 {
		return hw
	}
	if requested > hw {
		return hw
	}
	return requested
}

func dealHoleCards(deck *cards.Deck, cardIdx *int, numPlayers int) ([][2]cards.Card, error) {
	hands := make([][2]cards.Card, numPlayers)
	for i := 0; i < numPlayers; i++ {
		dealt, err := deck.DealAt(cardIdx, 2)
		if err != nil {
			return nil, err
		}
		hands[i] = [2]cards.Card{dealt[0], dealt[1]}
	}
	return hands, nil
}

// Train runs cfg.Iterations total self-play iterations (counting any
// already completed by a loaded checkpoint), distributing the remainder
// statically across worker goroutines, and returns the trained solver.
func Train(cfg TrainConfig) (*Solver, error) {
	var s *Solver
	startingIteration := 0

	if cfg.LoadPath != "" {
		table, completed, _, err := checkpoint.Load(cfg.LoadPath)
		if err != nil {
			log.Printf("warn: solver: checkpoint load failed, starting from scratch: %v", err)
			s = New()
		} else {
			s = FromTable(table)
			startingIteration = int(completed)
			s.Stats.CompletedIterations.Store(int64(completed))
			log.Printf("info: solver: resumed from %q at iteration %d (%d nodes)", cfg.LoadPath, completed, table.Count())
		}
	} else {
		s = New()
	}

	remaining := cfg.Iterations - startingIteration
	if remaining < 0 {
		remaining = 0
	}
	threads := clampThreads(cfg.NumThreads)
	if threads < 1 {
		threads = 1
	}

	workerCounts := make([]int, threads)
	base, rem := remaining/threads, remaining%threads
	for i := range workerCounts {
		workerCounts[i] = base
		if i < rem {
			workerCounts[i]++
		}
	}

	runID := uuid.New()
	log.Printf("info: solver: run %s starting: %d iterations remaining across %d workers (players=%d stack=%d ante=%d)",
		runID, remaining, threads, cfg.NumPlayers, cfg.InitialStack, cfg.Ante)

	var wg sync.WaitGroup
	for w := 0; w < threads; w++ {
		wg.Add(1)
		go func(workerID, count int) {
			defer wg.Done()
			runWorker(s, cfg, workerID, count, startingIteration)
		}(w, workerCounts[w])
	}
	wg.Wait()

	if cfg.SavePath != "" {
		final := s.Stats.CompletedIterations.Load()
		if err := checkpoint.SaveFinal(cfg.SavePath, s.Table, int32(final), s.Table.Count()); err != nil {
			log.Printf("error: solver: final checkpoint save failed: %v", err)
		} else {
			log.Printf("info: solver: run %s complete: %d iterations, %d nodes, max depth %d",
				runID, final, s.Table.Count(), s.Stats.MaxDepthReached.Load())
		}
	}
	return s, nil
}

func runWorker(s *Solver, cfg TrainConfig, workerID, count, startingIteration int) {
	seed := time.Now().UnixNano() + int64(workerID) + int64(startingIteration)
	rng := rand.New(rand.NewSource(seed))
	deck := cards.NewDeck(rng)

	for i := 0; i < count; i++ {
		globalCompleted := int(s.Stats.CompletedIterations.Load())
		button := (startingIteration + globalCompleted) % cfg.NumPlayers

		gs, err := game.New(cfg.NumPlayers, cfg.InitialStack, cfg.Ante, button)
		if err != nil {
			log.Printf("error: solver: worker %d: building root state: %v", workerID, err)
			continue
		}
		deck.Reset()
		cardIdx := 0
		hands, err := dealHoleCards(deck, &cardIdx, cfg.NumPlayers)
		if err != nil {
			log.Printf("warn: solver: worker %d: deck exhausted dealing hole cards", workerID)
			continue
		}
		gs.DealHoleCards(hands)

		for traverser := 0; traverser < cfg.NumPlayers; traverser++ {
			reach := make([]float64, cfg.NumPlayers)
			for p := range reach {
				reach[p] = 1.0
			}
			snapshot := cardIdx
			if _, err := s.CFRRecurse(gs.Clone(), traverser, reach, deck, &snapshot, rng, 0); err != nil {
				log.Printf("error: solver: worker %d: iteration aborted: %v", workerID, err)
			}
		}

		completed := s.Stats.CompletedIterations.Add(1)
		if workerID == 0 {
			logProgress(s, cfg, completed)
			maybeCheckpoint(s, cfg, completed)
		}
	}
}

func logProgress(s *Solver, cfg TrainConfig, completed int64) {
	if cfg.Iterations <= 0 {
		return
	}
	bucket := (completed * 100 / int64(cfg.Iterations) / 5) * 5
	for {
		last := s.Stats.LastLoggedPercent.Load()
		if bucket <= last {
			return
		}
		if s.Stats.LastLoggedPercent.CompareAndSwap(last, bucket) {
			log.Printf("info: solver: %d%% complete (%d/%d iterations, %d nodes, max depth %d)",
				bucket, completed, cfg.Iterations, s.Table.Count(), s.Stats.MaxDepthReached.Load())
			return
		}
	}
}

func maybeCheckpoint(s *Solver, cfg TrainConfig, completed int64) {
	if cfg.SavePath == "" || cfg.Interval <= 0 || completed%int64(cfg.Interval) != 0 {
		return
	}
	if err := checkpoint.Save(cfg.SavePath, s.Table, int32(completed), s.Table.Count()); err != nil {
		log.Printf("error: solver: periodic checkpoint save failed: %v", err)
		return
	}
	log.Printf("info: solver: checkpoint saved at iteration %d (%d nodes)", completed, s.Table.Count())
}
