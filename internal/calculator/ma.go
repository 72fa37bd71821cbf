package calculator

import (
	"errors"
	"math"
)

// ErrInvalidPeriod is returned for non-positive periods.
var ErrInvalidPeriod = errors.New("period must be positive")

// SMA computes the simple moving average series of values over period.
// The first period-1 samples are NaN. A NaN input poisons every window that contains it.
func SMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	out := nanSeries(len(values))
	sum := 0.0
	bad := 0
	for i, v := range values {
		if math.IsNaN(v) {
			bad++
		} else {
			sum += v
		}
		if i >= period {
			old := values[i-period]
			if math.IsNaN(old) {
				bad--
			} else {
				sum -= old
			}
		}
		if i >= period-1 && bad == 0 {
			out[i] = sum / float64(period)
		}
	}
	return out, nil
}

// EMA computes the exponential moving average series seeded with the SMA of the first full window.
// Leading NaN samples are skipped; the seed window starts at the first finite value.
func EMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	out := nanSeries(len(values))

	start := 0
	for start < len(values) && math.IsNaN(values[start]) {
		start++
	}
	if len(values)-start < period {
		return out, nil
	}

	seed := 0.0
	for i := start; i < start+period; i++ {
		seed += values[i]
	}
	prev := seed / float64(period)
	out[start+period-1] = prev

	k := 2.0 / float64(period+1)
	for i := start + period; i < len(values); i++ {
		prev = (values[i]-prev)*k + prev
		out[i] = prev
	}
	return out, nil
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
