package strategy

import (
	"math"
	"math/rand"

	"ReplayLab/internal/config"
	"ReplayLab/internal/model"
)

func on() config.Flag { return config.Flag(true) }

func newFrame(mod func(f *model.Frame)) *model.Frame {
	f := &model.Frame{Index: 2, Bar: model.OHLCV{Open: 100, High: 101, Low: 99, Close: 100}}
	if mod != nil {
		mod(f)
	}
	return f
}

func decideBuy(rc config.RunConfig, f *model.Frame) (bool, []string) {
	fams := BuildFamilies(&rc)
	tr := NewTracker(fams.All(), rc.ShapeLookback)
	tr.Update(f)
	return NewBuyDecider(rc, fams).Decide(f, tr)
}

func decideSell(rc config.RunConfig, f *model.Frame) (string, bool) {
	fams := BuildFamilies(&rc)
	tr := NewTracker(fams.All(), rc.ShapeLookback)
	tr.Update(f)
	return NewSellDecider(fams.Signals).Decide(f, tr)
}

func randFlag(rng *rand.Rand) config.Flag { return config.Flag(rng.Intn(2) == 1) }

func randTriggers(rng *rand.Rand) config.Triggers {
	return config.Triggers{Minimum: randFlag(rng), Maximum: randFlag(rng), Rising: randFlag(rng), Falling: randFlag(rng)}
}

// randomRunConfig switches every family and trigger on or off at random.
func randomRunConfig(rng *rand.Rand) config.RunConfig {
	rc := config.DefaultRunConfig()
	rc.Trend.Enabled, rc.Trend.Cross, rc.Trend.Triggers = randFlag(rng), randFlag(rng), randTriggers(rng)
	rc.RSI.Enabled, rc.RSI.Triggers = randFlag(rng), randTriggers(rng)
	rc.MACD.Enabled, rc.MACD.Cross, rc.MACD.Triggers = randFlag(rng), randFlag(rng), randTriggers(rng)
	rc.Stochastic.Enabled, rc.Stochastic.Cross, rc.Stochastic.Triggers = randFlag(rng), randFlag(rng), randTriggers(rng)
	rc.Band.Enabled, rc.Band.Touch, rc.Band.Cross, rc.Band.Triggers = randFlag(rng), randFlag(rng), randFlag(rng), randTriggers(rng)
	rc.Volume.Enabled, rc.Volume.Triggers = randFlag(rng), randTriggers(rng)
	rc.Fundamental.Enabled, rc.Fundamental.Triggers = randFlag(rng), randTriggers(rng)
	return rc
}

func randSeries(rng *rand.Rand, n int, base, spread float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = base + (rng.Float64()-0.5)*spread
	}
	return out
}

// randomFrame fills every series with noise.
func randomFrame(rng *rand.Rand) *model.Frame {
	const n = 5
	return newFrame(func(f *model.Frame) {
		f.Index = n - 1
		f.Close = randSeries(rng, n, 100, 20)
		f.High = randSeries(rng, n, 105, 20)
		f.Low = randSeries(rng, n, 95, 20)
		f.Volume = randSeries(rng, n, 1000, 800)
		f.TrendMA = randSeries(rng, n, 100, 20)
		f.RSI = randSeries(rng, n, 50, 100)
		f.MACD = randSeries(rng, n, 0, 4)
		f.MACDSignal = randSeries(rng, n, 0, 4)
		f.MACDHist = randSeries(rng, n, 0, 4)
		f.StochFast = model.Oscillator{K: randSeries(rng, n, 50, 100), D: randSeries(rng, n, 50, 100)}
		f.StochMid = model.Oscillator{K: randSeries(rng, n, 50, 100), D: randSeries(rng, n, 50, 100)}
		f.StochSlow = model.Oscillator{K: randSeries(rng, n, 50, 100), D: randSeries(rng, n, 50, 100)}
		f.BandUpper = randSeries(rng, n, 110, 10)
		f.BandLower = randSeries(rng, n, 90, 10)
		f.BandMiddle = randSeries(rng, n, 100, 10)
		f.BandPercent = randSeries(rng, n, 0.5, 2)
		f.VolumeAvg = randSeries(rng, n, 500, 400)
		f.Margin = randSeries(rng, n, 0.3, 1)
		f.Bar.Close = f.Close[n-1]
		f.Bar.High = f.High[n-1]
		f.Bar.Low = f.Low[n-1]
	})
}

// buildIndicators assembles an Indicators set from closes with flat OHLC around them.
func buildIndicators(closes, trend []float64) *model.Indicators {
	n := len(closes)
	ind := &model.Indicators{Symbol: "TEST", Bars: make([]model.OHLCV, n)}
	for i, c := range closes {
		ind.Bars[i] = model.OHLCV{Close: c, High: c, Low: c, Open: c, Volume: 1000, MarginOfSafety: math.NaN()}
	}
	ind.Close = append([]float64(nil), closes...)
	ind.High = append([]float64(nil), closes...)
	ind.Low = append([]float64(nil), closes...)
	ind.TrendMA = trend
	return ind
}
