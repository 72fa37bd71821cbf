package collector

import (
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"ReplayLab/internal/calculator"
	"ReplayLab/internal/config"
	"ReplayLab/internal/model"
)

// MockSource returns controllable fixed data for development and testing.
type MockSource struct {
	Price float64
	Count int
	// Bars, when set, is returned as is for every symbol.
	Bars []model.OHLCV
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) LoadBars(symbol string) (*model.BarSeries, error) {
	if m.Bars != nil {
		if len(m.Bars) == 0 {
			return nil, fmt.Errorf("%s: %w", symbol, ErrNoBars)
		}
		return &model.BarSeries{Symbol: symbol, Bars: m.Bars}, nil
	}
	return &model.BarSeries{Symbol: symbol, Bars: generateMockBars(m.Price, m.Count)}, nil
}

var mockEpoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// generateMockBars produces a gentle wave around basePrice, one bar per day.
func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.05*math.Sin(float64(i)/8) + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:           mockEpoch.AddDate(0, 0, i),
			Open:           p * 0.999,
			High:           p * 1.005,
			Low:            p * 0.995,
			Close:          p,
			Volume:         1000000 * (1 + 0.5*math.Cos(float64(i)/3)),
			MarginOfSafety: 0.2 + 0.1*math.Sin(float64(i)/20),
		}
	}
	return bars
}

// Collector orchestrates bar loading and indicator computation.
type Collector struct {
	Source Source
}

// NewCollector creates a new Collector.
func NewCollector(source Source) *Collector {
	return &Collector{Source: source}
}

// Collect loads the bars of symbol and computes every series rc asks for. Families that are
// switched off get no series; the trend average is always computed.
func (c *Collector) Collect(symbol string, rc config.RunConfig) (*model.Indicators, error) {
	series, err := c.Source.LoadBars(symbol)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	if len(series.Bars) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoBars)
	}
	logger := log.WithFields(log.Fields{"symbol": symbol, "source": c.Source.Name()})

	closes, highs, lows := series.Closes(), series.Highs(), series.Lows()
	ind := &model.Indicators{
		Symbol: symbol,
		Bars:   series.Bars,
		Close:  closes,
		High:   highs,
		Low:    lows,
		Volume: series.Volumes(),
		Margin: series.Margins(),
	}
	n := len(closes)

	// Trend MA
	if ma, err := calculator.SMA(closes, rc.Trend.Period); err != nil {
		logger.Warnf("trend MA calculation failed: %v, series left empty", err)
		ind.TrendMA = blank(n)
	} else {
		ind.TrendMA = ma
	}

	// RSI
	if rc.RSI.Enabled.On() {
		if rsi, err := calculator.RSI(closes, rc.RSI.Period); err != nil {
			logger.Warnf("RSI calculation failed: %v, series left empty", err)
			ind.RSI = blank(n)
		} else {
			ind.RSI = rsi
		}
	}

	// MACD
	if rc.MACD.Enabled.On() {
		if m, err := calculator.MACD(closes, rc.MACD.FastPeriod, rc.MACD.SlowPeriod, rc.MACD.SignalPeriod); err != nil {
			logger.Warnf("MACD calculation failed: %v, series left empty", err)
		} else {
			ind.MACD, ind.MACDSignal, ind.MACDHist = m.Line, m.Signal, m.Histogram
		}
	}

	// Stochastics
	if rc.Stochastic.Enabled.On() {
		ind.StochFast = oscillator(logger, "fast", highs, lows, closes, rc.Stochastic.Fast)
		ind.StochMid = oscillator(logger, "mid", highs, lows, closes, rc.Stochastic.Mid)
		ind.StochSlow = oscillator(logger, "slow", highs, lows, closes, rc.Stochastic.Slow)
	}

	// Bollinger bands
	if rc.Band.Enabled.On() {
		if b, err := calculator.Bollinger(closes, rc.Band.Period, rc.Band.StdDev); err != nil {
			logger.Warnf("Bollinger calculation failed: %v, series left empty", err)
		} else {
			ind.BandUpper, ind.BandMiddle, ind.BandLower, ind.BandPercent = b.Upper, b.Middle, b.Lower, b.Percent
		}
	}

	// Volume average
	if rc.Volume.Enabled.On() {
		if avg, err := calculator.SMA(ind.Volume, rc.Volume.Period); err != nil {
			logger.Warnf("volume average calculation failed: %v, series left empty", err)
			ind.VolumeAvg = blank(n)
		} else {
			ind.VolumeAvg = avg
		}
	}

	logger.WithField("bars", n).Debug("indicators computed")
	return ind, nil
}

func oscillator(logger *log.Entry, label string, highs, lows, closes []float64, w config.StochWindow) model.Oscillator {
	k, d, err := calculator.Stochastic(highs, lows, closes, w.KPeriod, w.DPeriod)
	if err != nil {
		logger.Warnf("%s stochastic calculation failed: %v, series left empty", label, err)
		return model.Oscillator{}
	}
	return model.Oscillator{K: k, D: d}
}

func blank(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
