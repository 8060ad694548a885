package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBetween_Bounds(t *testing.T) {
	rng := New(1)
	for i := 0; i < 1000; i++ {
		v := rng.Between(4, 6)
		assert.GreaterOrEqual(t, v, 4)
		assert.LessOrEqual(t, v, 6)
	}
}

func TestBetween_DegenerateRange(t *testing.T) {
	rng := New(1)
	assert.Equal(t, 5, rng.Between(5, 5))
	assert.Equal(t, 5, rng.Between(5, 3))
}

func TestChance_Extremes(t *testing.T) {
	rng := New(1)
	for i := 0; i < 100; i++ {
		assert.False(t, rng.Chance(0))
		assert.True(t, rng.Chance(1))
	}
}

func TestWeightedIndex(t *testing.T) {
	rng := New(42)

	counts := make([]int, 3)
	for i := 0; i < 10000; i++ {
		idx := rng.WeightedIndex([]int{10, 0, 90})
		counts[idx]++
	}

	assert.Zero(t, counts[1], "zero-weight entry must never be picked")
	assert.Greater(t, counts[2], counts[0])
	assert.Greater(t, counts[0], 0)
}

func TestWeightedIndex_EmptyAndZeroTotal(t *testing.T) {
	rng := New(1)
	assert.Equal(t, -1, rng.WeightedIndex(nil))
	assert.Equal(t, -1, rng.WeightedIndex([]int{0, 0}))
	assert.Equal(t, -1, rng.WeightedIndex([]int{-3}))
}

func TestShuffle_Permutes(t *testing.T) {
	rng := New(7)
	xs := []int{0, 1, 2, 3, 4, 5, 6, 7}
	rng.Shuffle(len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })

	seen := make(map[int]bool, len(xs))
	for _, v := range xs {
		seen[v] = true
	}
	assert.Len(t, seen, 8)
}

func TestDeterministicWithSameSeed(t *testing.T) {
	a, b := New(99), New(99)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}
