package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Validate for configurations a run cannot start with.
var ErrInvalidConfig = errors.New("invalid config")

// Triggers selects which shape states of a family count as signals.
// Minimum and Rising are entry triggers, Maximum and Falling exit triggers.
// On the volume and fundamental filters every set trigger becomes an extra requirement.
type Triggers struct {
	Minimum Flag `yaml:"minimum"`
	Maximum Flag `yaml:"maximum"`
	Rising  Flag `yaml:"rising"`
	Falling Flag `yaml:"falling"`
}

// Entry reports whether any entry trigger is set.
func (t Triggers) Entry() bool { return t.Minimum.On() || t.Rising.On() }

// TrendConfig configures the trend moving average family.
type TrendConfig struct {
	Enabled  Flag     `yaml:"enabled"`
	Period   int      `yaml:"period"`
	Cross    Flag     `yaml:"cross"`
	Triggers Triggers `yaml:"triggers"`
}

// RSIConfig configures the RSI oscillator-strength family.
// StrengthThreshold <= 0 disables the strength condition.
type RSIConfig struct {
	Enabled           Flag     `yaml:"enabled"`
	Period            int      `yaml:"period"`
	Oversold          float64  `yaml:"oversold"`
	Overbought        float64  `yaml:"overbought"`
	StrengthThreshold float64  `yaml:"strength_threshold"`
	Triggers          Triggers `yaml:"triggers"`
}

// MACDConfig configures the momentum histogram family.
type MACDConfig struct {
	Enabled      Flag     `yaml:"enabled"`
	FastPeriod   int      `yaml:"fast_period"`
	SlowPeriod   int      `yaml:"slow_period"`
	SignalPeriod int      `yaml:"signal_period"`
	Cross        Flag     `yaml:"cross"`
	Triggers     Triggers `yaml:"triggers"`
}

// StochWindow is the %K/%D window pair of one stochastic oscillator.
type StochWindow struct {
	KPeriod int `yaml:"k_period"`
	DPeriod int `yaml:"d_period"`
}

// StochasticConfig configures the fast, mid and slow stochastic oscillators.
// They share thresholds and triggers and are evaluated in fast, mid, slow order.
type StochasticConfig struct {
	Enabled    Flag        `yaml:"enabled"`
	Fast       StochWindow `yaml:"fast"`
	Mid        StochWindow `yaml:"mid"`
	Slow       StochWindow `yaml:"slow"`
	Oversold   float64     `yaml:"oversold"`
	Overbought float64     `yaml:"overbought"`
	Cross      Flag        `yaml:"cross"`
	Triggers   Triggers    `yaml:"triggers"`
}

// BandConfig configures the Bollinger band-position family.
type BandConfig struct {
	Enabled  Flag     `yaml:"enabled"`
	Period   int      `yaml:"period"`
	StdDev   float64  `yaml:"std_dev"`
	Touch    Flag     `yaml:"touch"`
	Cross    Flag     `yaml:"cross"`
	Triggers Triggers `yaml:"triggers"`
}

// VolumeConfig configures the volume-pressure AND filter.
type VolumeConfig struct {
	Enabled    Flag     `yaml:"enabled"`
	Period     int      `yaml:"period"`
	Multiplier float64  `yaml:"multiplier"`
	Triggers   Triggers `yaml:"triggers"`
}

// FundamentalConfig configures the margin-of-safety AND filter.
type FundamentalConfig struct {
	Enabled   Flag     `yaml:"enabled"`
	Threshold float64  `yaml:"threshold"`
	Triggers  Triggers `yaml:"triggers"`
}

// RunConfig is the strategy configuration of one backtest run. It holds no references, so a plain
// copy is an independent snapshot.
type RunConfig struct {
	StopLossPct   float64 `yaml:"stop_loss_pct"`
	ShapeLookback int     `yaml:"shape_lookback"`

	Trend       TrendConfig       `yaml:"trend"`
	RSI         RSIConfig         `yaml:"rsi"`
	MACD        MACDConfig        `yaml:"macd"`
	Stochastic  StochasticConfig  `yaml:"stochastic"`
	Band        BandConfig        `yaml:"band"`
	Volume      VolumeConfig      `yaml:"volume"`
	Fundamental FundamentalConfig `yaml:"fundamental"`
}

// DefaultRunConfig returns a RunConfig with every documented default and every family disabled.
// Load decodes on top of it, so a key left out of the file keeps its default while an explicit
// zero stays zero.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		StopLossPct:   0.05,
		ShapeLookback: 3,
		Trend:         TrendConfig{Period: 50},
		RSI:           RSIConfig{Period: 14, Oversold: 30, Overbought: 70},
		MACD:          MACDConfig{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9},
		Stochastic: StochasticConfig{
			Fast:       StochWindow{KPeriod: 5, DPeriod: 3},
			Mid:        StochWindow{KPeriod: 14, DPeriod: 3},
			Slow:       StochWindow{KPeriod: 21, DPeriod: 5},
			Oversold:   20,
			Overbought: 80,
		},
		Band:   BandConfig{Period: 20, StdDev: 2},
		Volume: VolumeConfig{Period: 20, Multiplier: 1.5},
	}
}

// ApplyDefaults replaces zero windows with their defaults. Only lengths are touched: a zero period
// has no meaning, while a zero stop-loss percentage, multiplier or threshold is a valid setting.
func (rc *RunConfig) ApplyDefaults() {
	def := DefaultRunConfig()
	defaultInt(&rc.ShapeLookback, def.ShapeLookback)
	defaultInt(&rc.Trend.Period, def.Trend.Period)
	defaultInt(&rc.RSI.Period, def.RSI.Period)
	defaultInt(&rc.MACD.FastPeriod, def.MACD.FastPeriod)
	defaultInt(&rc.MACD.SlowPeriod, def.MACD.SlowPeriod)
	defaultInt(&rc.MACD.SignalPeriod, def.MACD.SignalPeriod)
	defaultWindow(&rc.Stochastic.Fast, def.Stochastic.Fast)
	defaultWindow(&rc.Stochastic.Mid, def.Stochastic.Mid)
	defaultWindow(&rc.Stochastic.Slow, def.Stochastic.Slow)
	defaultInt(&rc.Band.Period, def.Band.Period)
	defaultInt(&rc.Volume.Period, def.Volume.Period)
}

func defaultInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func defaultWindow(w *StochWindow, def StochWindow) {
	defaultInt(&w.KPeriod, def.KPeriod)
	defaultInt(&w.DPeriod, def.DPeriod)
}

// SignalFamiliesEnabled reports whether any OR-pass family is switched on.
// The volume and fundamental filters do not count.
func (rc *RunConfig) SignalFamiliesEnabled() bool {
	return rc.Trend.Enabled.On() || rc.RSI.Enabled.On() || rc.MACD.Enabled.On() ||
		rc.Stochastic.Enabled.On() || rc.Band.Enabled.On()
}

// Validate checks types and ranges once at run start.
func (rc *RunConfig) Validate() error {
	if rc.StopLossPct < 0 || rc.StopLossPct >= 1 {
		return fmt.Errorf("%w: stop_loss_pct must be in [0,1), got %v", ErrInvalidConfig, rc.StopLossPct)
	}
	if rc.ShapeLookback < 0 {
		return fmt.Errorf("%w: shape_lookback must not be negative", ErrInvalidConfig)
	}
	periods := []struct {
		name string
		v    int
	}{
		{"trend.period", rc.Trend.Period},
		{"rsi.period", rc.RSI.Period},
		{"macd.fast_period", rc.MACD.FastPeriod},
		{"macd.slow_period", rc.MACD.SlowPeriod},
		{"macd.signal_period", rc.MACD.SignalPeriod},
		{"stochastic.fast.k_period", rc.Stochastic.Fast.KPeriod},
		{"stochastic.fast.d_period", rc.Stochastic.Fast.DPeriod},
		{"stochastic.mid.k_period", rc.Stochastic.Mid.KPeriod},
		{"stochastic.mid.d_period", rc.Stochastic.Mid.DPeriod},
		{"stochastic.slow.k_period", rc.Stochastic.Slow.KPeriod},
		{"stochastic.slow.d_period", rc.Stochastic.Slow.DPeriod},
		{"band.period", rc.Band.Period},
		{"volume.period", rc.Volume.Period},
	}
	for _, p := range periods {
		if p.v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidConfig, p.name, p.v)
		}
	}
	if rc.MACD.FastPeriod >= rc.MACD.SlowPeriod && rc.MACD.SlowPeriod > 0 {
		return fmt.Errorf("%w: macd.fast_period must be below macd.slow_period", ErrInvalidConfig)
	}
	if rc.RSI.Oversold >= rc.RSI.Overbought {
		return fmt.Errorf("%w: rsi.oversold must be below rsi.overbought", ErrInvalidConfig)
	}
	if rc.Stochastic.Oversold >= rc.Stochastic.Overbought {
		return fmt.Errorf("%w: stochastic.oversold must be below stochastic.overbought", ErrInvalidConfig)
	}
	if rc.Band.StdDev < 0 {
		return fmt.Errorf("%w: band.std_dev must not be negative", ErrInvalidConfig)
	}
	if rc.Volume.Multiplier < 0 {
		return fmt.Errorf("%w: volume.multiplier must not be negative", ErrInvalidConfig)
	}
	return nil
}
