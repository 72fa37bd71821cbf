package calculator

import "math"

// MACDSeries is the MACD line, its signal line and their difference.
type MACDSeries struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes fast EMA minus slow EMA, its signal EMA and the histogram.
func MACD(closes []float64, fast, slow, signal int) (MACDSeries, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return MACDSeries{}, ErrInvalidPeriod
	}
	fastEMA, err := EMA(closes, fast)
	if err != nil {
		return MACDSeries{}, err
	}
	slowEMA, err := EMA(closes, slow)
	if err != nil {
		return MACDSeries{}, err
	}

	line := nanSeries(len(closes))
	for i := range closes {
		if !math.IsNaN(fastEMA[i]) && !math.IsNaN(slowEMA[i]) {
			line[i] = fastEMA[i] - slowEMA[i]
		}
	}
	sig, err := EMA(line, signal)
	if err != nil {
		return MACDSeries{}, err
	}
	hist := nanSeries(len(closes))
	for i := range closes {
		if !math.IsNaN(line[i]) && !math.IsNaN(sig[i]) {
			hist[i] = line[i] - sig[i]
		}
	}
	return MACDSeries{Line: line, Signal: sig, Histogram: hist}, nil
}
