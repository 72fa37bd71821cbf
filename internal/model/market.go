package model

import "time"

// OHLCV represents a single candlestick bar.
// MarginOfSafety is the externally precomputed fundamental score joined to the bar; NaN when absent.
type OHLCV struct {
	Time           time.Time
	Open           float64
	High           float64
	Low            float64
	Close          float64
	Volume         float64
	MarginOfSafety float64
}

// BarSeries holds the chronologically ordered bars of one symbol.
type BarSeries struct {
	Symbol string
	Bars   []OHLCV
}

// Closes extracts the close prices of the series.
func (s *BarSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Highs extracts the high prices of the series.
func (s *BarSeries) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low prices of the series.
func (s *BarSeries) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}
	return out
}

// Volumes extracts the traded volumes of the series.
func (s *BarSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// Margins extracts the per-bar margin-of-safety values.
func (s *BarSeries) Margins() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.MarginOfSafety
	}
	return out
}
