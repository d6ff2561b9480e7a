package random

import (
	"fmt"
	"math/rand"
	"testing"
	"time"
)

func TestSampleIndex(t *testing.T) {
	probs := []float64{0.1, 0.1, 0.5, 0.3}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	hist := map[int]int{}
	for n := 0; n < 10000; n++ {
		i, err := SampleIndex(rng, probs)
		if err != nil {
			t.Fatalf("SampleIndex: %v", err)
		}
		hist[i]++
	}
	fmt.Println(hist)
	if hist[2] < hist[0] {
		t.Errorf("expected index 2 (prob 0.5) to be drawn more often than index 0 (prob 0.1): %v", hist)
	}
}

func TestSampleIndexRejectsBadSum(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := SampleIndex(rng, []float64{0.2, 0.2}); err == nil {
		t.Errorf("expected error for probs summing to 0.4")
	}
}
