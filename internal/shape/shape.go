// Package shape classifies the tail of a numeric series into local extremum and direction flags.
package shape

import "math"

// DefaultLookback is the rising/falling comparison window.
const DefaultLookback = 3

// State is the shape of a series at the current bar.
// LocalMin and LocalMax describe the previous sample; Rising and Falling compare the newest sample
// with the one lookback-1 bars earlier.
type State struct {
	LocalMin bool
	LocalMax bool
	Rising   bool
	Falling  bool
}

// Classify computes the State of series. Series shorter than 3 samples, and any non-finite sample
// among those consulted, yield the zero State.
func Classify(series []float64, lookback int) State {
	n := len(series)
	if n < 3 {
		return State{}
	}
	if lookback <= 1 {
		lookback = DefaultLookback
	}

	last, mid, first := series[n-1], series[n-2], series[n-3]
	if !finite(last) || !finite(mid) || !finite(first) {
		return State{}
	}

	st := State{
		LocalMin: mid < first && last > mid,
		LocalMax: mid > first && last < mid,
	}

	if n >= lookback {
		ref := series[n-lookback]
		if !finite(ref) {
			return State{}
		}
		st.Rising = last > ref
		st.Falling = last < ref
	}
	return st
}

// CrossedAbove reports whether a moved from at-or-below b on the previous bar to above b now.
func CrossedAbove(a, b []float64) bool {
	pa, ca, ok := lastTwo(a)
	if !ok {
		return false
	}
	pb, cb, ok := lastTwo(b)
	if !ok {
		return false
	}
	return pa <= pb && ca > cb
}

// CrossedBelow reports whether a moved from at-or-above b on the previous bar to below b now.
func CrossedBelow(a, b []float64) bool {
	pa, ca, ok := lastTwo(a)
	if !ok {
		return false
	}
	pb, cb, ok := lastTwo(b)
	if !ok {
		return false
	}
	return pa >= pb && ca < cb
}

// Last returns the newest sample, and false when it is missing or not finite.
func Last(series []float64) (float64, bool) {
	return At(series, 1)
}

// Prev returns the sample before the newest one.
func Prev(series []float64) (float64, bool) {
	return At(series, 2)
}

// At returns series[len-back] when it exists and is finite.
func At(series []float64, back int) (float64, bool) {
	i := len(series) - back
	if back < 1 || i < 0 {
		return 0, false
	}
	v := series[i]
	return v, finite(v)
}

func lastTwo(series []float64) (prev, cur float64, ok bool) {
	cur, ok = Last(series)
	if !ok {
		return 0, 0, false
	}
	prev, ok = Prev(series)
	return prev, cur, ok
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
