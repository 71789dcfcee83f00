// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package sampler

import (
	"math"
	"sort"
)

// Window is a fixed-size window of accepted samples with a median
// result. When the window never fills before the wake timeout, Result
// degrades to the latest accepted sample instead of blocking further.
type Window struct {
	values []float64
	size   int
}

// NewWindow creates a window of the given capacity.
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{values: make([]float64, 0, size), size: size}
}

// Reset discards all accepted samples.
func (w *Window) Reset() {
	w.values = w.values[:0]
}

// Add accepts one sample. Adding past capacity is ignored.
func (w *Window) Add(v float64) {
	if len(w.values) < w.size {
		w.values = append(w.values, v)
	}
}

// Count returns the number of accepted samples.
func (w *Window) Count() int { return len(w.values) }

// Full reports whether the window holds its configured sample count.
func (w *Window) Full() bool { return len(w.values) >= w.size }

// Last returns the latest accepted sample, or NaN if none.
func (w *Window) Last() float64 {
	if len(w.values) == 0 {
		return math.NaN()
	}
	return w.values[len(w.values)-1]
}

// Median returns the median of the accepted samples: the middle value
// for an odd count, the mean of the middle two for an even count, NaN
// for an empty window.
func (w *Window) Median() float64 {
	n := len(w.values)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, w.values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Result returns the median when the window is full and the latest
// accepted sample otherwise; NaN when nothing was accepted.
func (w *Window) Result() float64 {
	if w.Full() {
		return w.Median()
	}
	return w.Last()
}
