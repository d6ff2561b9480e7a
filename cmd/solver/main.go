package main

import (
	"encoding/json"
	"flag"
	"log"
	"math"
	"math/rand"
	"os"
	"time"

	"nlhe-solver/appconfig"
	"nlhe-solver/cards"
	"nlhe-solver/equity"
	"nlhe-solver/game"
	"nlhe-solver/handgen"
	"nlhe-solver/infoset"
	"nlhe-solver/solver"
)

func main() {
	cfg, err := appconfig.LoadAppConfig()
	if err != nil {
		log.Fatalf("appconfig: %v", err)
	}

	iterations := flag.Int("iterations", 10000, "total self-play iterations to run")
	players := flag.Int("players", cfg.DefaultPlayers, "number of players at the table")
	stack := flag.Int("stack", cfg.DefaultStack, "initial stack size in chips (1 BB = 2 chips)")
	ante := flag.Int("ante", cfg.DefaultAnte, "ante size")
	threads := flag.Int("threads", cfg.NumThreads, "worker goroutines (0 = GOMAXPROCS)")
	savePath := flag.String("save", cfg.CheckpointDir+"/checkpoint.bin", "checkpoint file path")
	loadPath := flag.String("load", "", "checkpoint file path to resume from")
	interval := flag.Int("interval", cfg.SaveInterval, "iterations between periodic checkpoint saves")
	exportPath := flag.String("export", "", "write a JSON strategy export to this path after training")
	equityCheck := flag.Bool("equity-check", false, "run a diagnostic Monte Carlo equity sample instead of training")
	flag.Parse()

	if *players < 2 {
		log.Fatalf("invalid config: need at least 2 players, got %d", *players)
	}

	if *equityCheck {
		runEquityCheck()
		return
	}

	log.Printf("info: startup: players=%d stack=%d ante=%d iterations=%d threads=%d save=%q load=%q interval=%d",
		*players, *stack, *ante, *iterations, *threads, *savePath, *loadPath, *interval)

	if err := os.MkdirAll(dirOf(*savePath), 0o755); err != nil {
		log.Fatalf("invalid config: creating checkpoint directory: %v", err)
	}

	s, err := solver.Train(solver.TrainConfig{
		Iterations:   *iterations,
		NumPlayers:   *players,
		InitialStack: *stack,
		Ante:         *ante,
		NumThreads:   *threads,
		SavePath:     *savePath,
		Interval:     *interval,
		LoadPath:     *loadPath,
	})
	if err != nil {
		log.Fatalf("error: training aborted: %v", err)
	}

	if *exportPath != "" {
		if err := exportStrategy(s, *players, *stack, *ante, *exportPath); err != nil {
			log.Fatalf("error: strategy export failed: %v", err)
		}
		log.Printf("info: strategy export written to %q", *exportPath)
	}
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

func runEquityCheck() {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	hero := [2]cards.Card{cards.NewCard(12, 0), cards.NewCard(12, 1)} // AA
	eq, err := equity.Estimate(hero, nil, 20000, rng)
	if err != nil {
		log.Fatalf("error: equity check failed: %v", err)
	}
	log.Printf("info: equity check: AA preflop vs random hand over 20000 trials: %.4f", eq)
}

type handExport struct {
	Actions  []string  `json:"actions"`
	Strategy []float64 `json:"strategy"`
}

// exportStrategy sweeps the 169 canonical hand types at every table
// position's opening decision (the decision a seat faces when every seat
// acting before it has folded) and writes the average strategy for each
// visited infoset to path as JSON, keyed by position then hand type. A
// seat whose fold-to spot ends the hand (the big blind) gets no entry.
func exportStrategy(s *solver.Solver, numPlayers, stack, ante int, path string) error {
	root, err := game.New(numPlayers, stack, ante, 0)
	if err != nil {
		return err
	}

	representative := make(map[string][2]cards.Card, 169)
	for _, pair := range handgen.All1326() {
		t := handgen.CanonicalType(pair[0], pair[1])
		if _, ok := representative[t]; !ok {
			representative[t] = pair
		}
	}

	out := make(map[string]map[string]handExport)
	for seat := 0; seat < numPlayers; seat++ {
		ctx := root.Clone()
		for !ctx.IsTerminal() && ctx.CurrentPlayer() != seat {
			if err := ctx.ApplyAction(game.Action{Kind: game.Fold, Player: ctx.CurrentPlayer()}); err != nil {
				return err
			}
		}
		if ctx.IsTerminal() {
			continue
		}
		label := handgen.PositionLabel(seat, numPlayers, root.Button())
		bucket, ok := out[label]
		if !ok {
			bucket = make(map[string]handExport)
			out[label] = bucket
		}
		for _, t := range handgen.All169() {
			hole := representative[t]
			key := infoset.KeyFromComponents(seat, hole, ctx.History(), ctx)
			found, strategy, actions := s.GetStrategyInfo(key)
			if !found {
				continue
			}
			actionStrs := make([]string, len(actions))
			rounded := make([]float64, len(strategy))
			for i, a := range actions {
				actionStrs[i] = a.String()
				rounded[i] = round4(strategy[i])
			}
			bucket[t] = handExport{Actions: actionStrs, Strategy: rounded}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
