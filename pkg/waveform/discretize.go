// Package waveform converts clocked samples into step waveforms for plotting.
package waveform

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned when a waveform has no samples.
	ErrEmpty = errors.New("waveform has no samples")
	// ErrLengthMismatch is returned when times and values differ in length.
	ErrLengthMismatch = errors.New("times and values differ in length")
	// ErrBitCount is returned for a negative bit count.
	ErrBitCount = errors.New("invalid bit count")
)

// Discretize turns paired samples into a hold-until-next-change sequence of
// 2n points. Sample i contributes (t[i], y[i]) followed by (t[i+1], y[i]);
// the final time is pinned to stop. Linear interpolation over the result
// draws a staircase.
func Discretize(t, y []float64, stop float64) ([]float64, []float64, error) {
	if len(t) != len(y) {
		return nil, nil, fmt.Errorf("%w: %d times, %d values", ErrLengthMismatch, len(t), len(y))
	}
	n := len(t)
	if n == 0 {
		return nil, nil, ErrEmpty
	}

	times := make([]float64, 2*n)
	values := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		times[2*i] = t[i]
		if i+1 < n {
			times[2*i+1] = t[i+1]
		}
		values[2*i] = y[i]
		values[2*i+1] = y[i]
	}
	times[2*n-1] = stop

	return times, values, nil
}
