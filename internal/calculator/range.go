package calculator

import "math"

// RollingRange returns the highest high and lowest low of each trailing window of period bars.
// Samples before the first full window are NaN.
func RollingRange(highs, lows []float64, period int) (hh, ll []float64, err error) {
	if period <= 0 {
		return nil, nil, ErrInvalidPeriod
	}
	n := len(highs)
	if len(lows) < n {
		n = len(lows)
	}
	hh = nanSeries(n)
	ll = nanSeries(n)
	for i := period - 1; i < n; i++ {
		high := math.Inf(-1)
		low := math.Inf(1)
		for j := i - period + 1; j <= i; j++ {
			if highs[j] > high {
				high = highs[j]
			}
			if lows[j] < low {
				low = lows[j]
			}
		}
		hh[i] = high
		ll[i] = low
	}
	return hh, ll, nil
}

// Position returns where current sits within [low, high], clamped to 0..1.
// A degenerate range reads 0.5.
func Position(current, high, low float64) float64 {
	if high == low {
		return 0.5
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos
}
