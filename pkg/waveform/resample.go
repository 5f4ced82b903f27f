package waveform

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Resample evaluates the nearest-neighbour interpolant of (times, values) on
// n evenly spaced points from the first to the last time. times must be
// non-decreasing, as produced by Discretize.
func Resample(times, values []float64, n int) ([]float64, []float64, error) {
	if len(times) != len(values) {
		return nil, nil, fmt.Errorf("%w: %d times, %d values", ErrLengthMismatch, len(times), len(values))
	}
	if len(times) == 0 {
		return nil, nil, ErrEmpty
	}
	if n < 2 {
		n = 2
	}

	lo, hi := floats.Min(times), floats.Max(times)
	grid := make([]float64, n)
	if lo == hi {
		for i := range grid {
			grid[i] = lo
		}
	} else {
		floats.Span(grid, lo, hi)
	}

	out := make([]float64, n)
	for i, x := range grid {
		out[i] = values[nearest(times, x)]
	}
	return grid, out, nil
}

// nearest returns the index of the sample closest to x. On a tie the earlier
// sample wins.
func nearest(times []float64, x float64) int {
	j := sort.SearchFloat64s(times, x)
	if j == 0 {
		return 0
	}
	if j == len(times) {
		return len(times) - 1
	}
	if x-times[j-1] <= times[j]-x {
		return j - 1
	}
	return j
}
