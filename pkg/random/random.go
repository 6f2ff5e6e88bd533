package random

import (
	"math/rand"
	"sort"
	"time"
)

// Source is the subset of *rand.Rand used here, so callers can pass a seeded
// generator in tests.
type Source interface {
	Intn(n int) int
}

// NewSource returns a generator seeded from the current time
func NewSource() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// SelectRandomItems selects n distinct indices out of [0, totalCount)
// Returns all indices when n >= totalCount
func SelectRandomItems(rng Source, totalCount, n int) []int {
	if n <= 0 || totalCount <= 0 {
		return []int{}
	}

	allIndices := make([]int, totalCount)
	for i := range allIndices {
		allIndices[i] = i
	}

	if n >= totalCount {
		return allIndices
	}

	// Shuffle using Fisher-Yates algorithm
	for i := len(allIndices) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		allIndices[i], allIndices[j] = allIndices[j], allIndices[i]
	}

	return allIndices[:n]
}

// SelectRandomDaysOfMonth picks n distinct day numbers (1-based) from a month
// with daysInMonth days. The result is sorted ascending.
func SelectRandomDaysOfMonth(rng Source, daysInMonth, n int) []int {
	indices := SelectRandomItems(rng, daysInMonth, n)

	days := make([]int, len(indices))
	for i, idx := range indices {
		days[i] = idx + 1
	}
	sort.Ints(days)

	return days
}
