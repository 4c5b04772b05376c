package sampler

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// Factorial returns n! for small non-negative n.
func Factorial(n int) int {
	f := 1
	for i := 2; i <= n; i++ {
		f *= i
	}
	return f
}

// PermutationRank maps a permutation of 0..len(perm)-1 to its lexicographic
// rank in [0, len(perm)!) using the Lehmer code.
func PermutationRank(perm []int) (int, error) {
	seen := make([]bool, len(perm))
	for _, v := range perm {
		if v < 0 || v >= len(perm) || seen[v] {
			return 0, fmt.Errorf("%w: %v is not a permutation", ErrInvalidArgument, perm)
		}
		seen[v] = true
	}

	rank := 0
	for i, v := range perm {
		smaller := 0
		for _, w := range perm[i+1:] {
			if w < v {
				smaller++
			}
		}
		rank += smaller * Factorial(len(perm)-1-i)
	}
	return rank, nil
}

// RunTrials calls draw trials times and tallies how often each permutation of
// 0..size-1 is produced. The returned slice is indexed by PermutationRank.
func RunTrials(trials, size int, draw func() ([]int, error)) ([]int, error) {
	counts := make([]int, Factorial(size))
	for i := 0; i < trials; i++ {
		perm, err := draw()
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", i, err)
		}
		if len(perm) != size {
			return nil, fmt.Errorf("trial %d: %w: got %d items, want %d", i, ErrInvalidArgument, len(perm), size)
		}
		rank, err := PermutationRank(perm)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", i, err)
		}
		counts[rank]++
	}
	return counts, nil
}

// ChiSquare tests counts against a uniform expectation and returns Pearson's
// statistic together with its upper-tail p-value.
func ChiSquare(counts []int) (stat, pValue float64) {
	if len(counts) < 2 {
		return 0, 1
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0, 1
	}

	expected := float64(total) / float64(len(counts))
	for _, c := range counts {
		d := float64(c) - expected
		stat += d * d / expected
	}

	dist := distuv.ChiSquared{K: float64(len(counts) - 1)}
	return stat, dist.Survival(stat)
}
