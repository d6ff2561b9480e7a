package random

import (
	"fmt"
	"math/rand"
)

// SampleIndex draws an index from probs, a discrete distribution over
// 0..len(probs)-1. probs must sum to ~1 (checked with a 5% tolerance,
// matching floating-point drift expected after many regret-matching
// updates). Returns an error if probs is empty or its sum is out of
// tolerance; ties within the tolerance band fall to the last index, same
// as a cumulative-probability walk with no remaining mass.
func SampleIndex(rng *rand.Rand, probs []float64) (int, error) {
	if len(probs) == 0 {
		return 0, fmt.Errorf("random: SampleIndex called with empty distribution")
	}
	var sum float64
	for _, p := range probs {
		sum += p
	}
	if sum < 0.95 || sum > 1.05 {
		return 0, fmt.Errorf("random: invalid probs sum %.4f != 1", sum)
	}
	r := rng.Float64()
	var cumulative float64
	for i, p := range probs {
		cumulative += p
		if r < cumulative {
			return i, nil
		}
	}
	return len(probs) - 1, nil
}
