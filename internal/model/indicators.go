package model

// Oscillator is a stochastic oscillator line pair.
type Oscillator struct {
	K []float64
	D []float64
}

// Indicators holds every ready-made indicator series of one symbol, aligned with its bars.
// Warm-up samples are NaN.
type Indicators struct {
	Symbol string
	Bars   []OHLCV

	Close  []float64
	High   []float64
	Low    []float64
	Volume []float64

	TrendMA []float64

	RSI []float64

	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64

	StochFast Oscillator
	StochMid  Oscillator
	StochSlow Oscillator

	BandUpper   []float64
	BandMiddle  []float64
	BandLower   []float64
	BandPercent []float64

	VolumeAvg []float64
	Margin    []float64
}

// Len returns the number of bars.
func (ind *Indicators) Len() int { return len(ind.Bars) }

// Frame returns the view of every series up to and including bar i.
// Nothing after bar i is reachable from the returned frame.
func (ind *Indicators) Frame(i int) *Frame {
	n := i + 1
	return &Frame{
		Index:       i,
		Bar:         ind.Bars[i],
		Close:       head(ind.Close, n),
		High:        head(ind.High, n),
		Low:         head(ind.Low, n),
		Volume:      head(ind.Volume, n),
		TrendMA:     head(ind.TrendMA, n),
		RSI:         head(ind.RSI, n),
		MACD:        head(ind.MACD, n),
		MACDSignal:  head(ind.MACDSignal, n),
		MACDHist:    head(ind.MACDHist, n),
		StochFast:   Oscillator{K: head(ind.StochFast.K, n), D: head(ind.StochFast.D, n)},
		StochMid:    Oscillator{K: head(ind.StochMid.K, n), D: head(ind.StochMid.D, n)},
		StochSlow:   Oscillator{K: head(ind.StochSlow.K, n), D: head(ind.StochSlow.D, n)},
		BandUpper:   head(ind.BandUpper, n),
		BandMiddle:  head(ind.BandMiddle, n),
		BandLower:   head(ind.BandLower, n),
		BandPercent: head(ind.BandPercent, n),
		VolumeAvg:   head(ind.VolumeAvg, n),
		Margin:      head(ind.Margin, n),
	}
}

// head caps s at n samples; a shorter or missing series is returned as is.
// The capacity is clipped too so an append on the view cannot write past bar i.
func head(s []float64, n int) []float64 {
	if len(s) < n {
		n = len(s)
	}
	return s[:n:n]
}

// Frame is the read-only prefix of every series visible at one bar.
type Frame struct {
	Index int
	Bar   OHLCV

	Close  []float64
	High   []float64
	Low    []float64
	Volume []float64

	TrendMA []float64

	RSI []float64

	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64

	StochFast Oscillator
	StochMid  Oscillator
	StochSlow Oscillator

	BandUpper   []float64
	BandMiddle  []float64
	BandLower   []float64
	BandPercent []float64

	VolumeAvg []float64
	Margin    []float64
}
