// Package equity implements a standalone Monte Carlo equity estimator:
// hero hand vs. one random opponent hand, rolled out to a random
// showdown board. It is a diagnostic tool only, entirely separate from
// the CFR traversal's own sampling in package solver.
package equity

import (
	"fmt"
	"math/rand"

	"nlhe-solver/cards"
	"nlhe-solver/handeval"
)

// Estimate runs numSimulations random rollouts of hero's hand against a
// single random opponent hand, completing board to 5 cards each
// simulation, and returns hero's equity (wins + half of ties, over
// simulations run).
func Estimate(hero [2]cards.Card, board []cards.Card, numSimulations int, rng *rand.Rand) (float64, error) {
	if len(board) > 5 {
		return 0, fmt.Errorf("equity: board has %d cards, want at most 5", len(board))
	}
	if numSimulations <= 0 {
		return 0, nil
	}

	remaining := remainingDeck(hero, board)
	needed := 2 + (5 - len(board))
	if len(remaining) < needed {
		return 0, fmt.Errorf("equity: only %d cards left in deck, need %d", len(remaining), needed)
	}

	var wins, ties float64
	for i := 0; i < numSimulations; i++ {
		rng.Shuffle(len(remaining), func(a, b int) {
			remaining[a], remaining[b] = remaining[b], remaining[a]
		})

		opponent := [2]cards.Card{remaining[0], remaining[1]}
		var simBoard [5]cards.Card
		copy(simBoard[:], board)
		for j := 0; j < 5-len(board); j++ {
			simBoard[len(board)+j] = remaining[2+j]
		}

		heroRank := handeval.Rank7(hero, simBoard)
		villainRank := handeval.Rank7(opponent, simBoard)
		switch {
		case heroRank < villainRank:
			wins++
		case heroRank == villainRank:
			ties++
		}
	}
	return (wins + 0.5*ties) / float64(numSimulations), nil
}

func remainingDeck(hero [2]cards.Card, board []cards.Card) []cards.Card {
	excluded := make(map[cards.Card]bool, 7)
	excluded[hero[0]] = true
	excluded[hero[1]] = true
	for _, c := range board {
		excluded[c] = true
	}
	out := make([]cards.Card, 0, cards.NumCards-len(excluded))
	for i := 0; i < cards.NumCards; i++ {
		c := cards.Card(i)
		if !excluded[c] {
			out = append(out, c)
		}
	}
	return out
}
