package strategy

import (
	"fmt"

	"ReplayLab/internal/config"
	"ReplayLab/internal/model"
	"ReplayLab/internal/shape"
)

// Families is the full family set of one run, in evaluation order.
type Families struct {
	// Signals are the OR-pass families, in exit priority order.
	Signals     []*Family
	Trend       *Family
	Volume      *Family
	Fundamental *Family
}

// All returns every family, signals first.
func (fs *Families) All() []*Family {
	out := make([]*Family, 0, len(fs.Signals)+2)
	out = append(out, fs.Signals...)
	return append(out, fs.Volume, fs.Fundamental)
}

// BuildFamilies wires the families of rc. Rules exist only for the triggers rc switches on.
func BuildFamilies(rc *config.RunConfig) *Families {
	trend := trendFamily(rc.Trend)
	fs := &Families{
		Trend: trend,
		Signals: []*Family{
			trend,
			rsiFamily(rc.RSI),
			macdFamily(rc.MACD),
			stochFamily(FamilyStochFast, "fast", func(f *model.Frame) model.Oscillator { return f.StochFast }, rc.Stochastic),
			stochFamily(FamilyStochMid, "mid", func(f *model.Frame) model.Oscillator { return f.StochMid }, rc.Stochastic),
			stochFamily(FamilyStochSlow, "slow", func(f *model.Frame) model.Oscillator { return f.StochSlow }, rc.Stochastic),
			bandFamily(rc.Band),
		},
		Volume: &Family{
			ID:      FamilyVolume,
			Enabled: rc.Volume.Enabled.On(),
			Series:  func(f *model.Frame) []float64 { return f.Volume },
		},
		Fundamental: &Family{
			ID:      FamilyFundamental,
			Enabled: rc.Fundamental.Enabled.On(),
			Series:  func(f *model.Frame) []float64 { return f.Margin },
		},
	}
	return fs
}

func trendFamily(tc config.TrendConfig) *Family {
	fam := &Family{
		ID:            FamilyTrend,
		Enabled:       tc.Enabled.On(),
		AlwaysTracked: true,
		Series:        func(f *model.Frame) []float64 { return f.TrendMA },
	}
	if tc.Cross.On() {
		fam.Buy = append(fam.Buy, Rule{Name: "trend-cross", Check: func(c Context) (string, bool) {
			if !shape.CrossedAbove(c.Frame.Close, c.Frame.TrendMA) {
				return "", false
			}
			return fmt.Sprintf("trend-cross: close %s crossed above MA %s", num(c.Frame.Close), num(c.Frame.TrendMA)), true
		}})
		fam.Sell = append(fam.Sell, Rule{Name: "trend-cross", Check: func(c Context) (string, bool) {
			if !shape.CrossedBelow(c.Frame.Close, c.Frame.TrendMA) {
				return "", false
			}
			return fmt.Sprintf("trend: close %s crossed below MA %s", num(c.Frame.Close), num(c.Frame.TrendMA)), true
		}})
	}
	if tc.Triggers.Minimum.On() {
		fam.Buy = append(fam.Buy, shapeRule("trend-minimum", "trend-shape: MA local minimum", isLocalMin))
	}
	if tc.Triggers.Rising.On() {
		fam.Buy = append(fam.Buy, shapeRule("trend-rising", "trend-shape: MA rising", isRising))
	}
	if tc.Triggers.Maximum.On() {
		fam.Sell = append(fam.Sell, shapeRule("trend-maximum", "trend: MA local maximum", isLocalMax))
	}
	if tc.Triggers.Falling.On() {
		fam.Sell = append(fam.Sell, shapeRule("trend-falling", "trend: MA falling", isFalling))
	}
	return fam
}

func rsiFamily(rc config.RSIConfig) *Family {
	fam := &Family{
		ID:      FamilyRSI,
		Enabled: rc.Enabled.On(),
		Series:  func(f *model.Frame) []float64 { return f.RSI },
	}
	if rc.Triggers.Minimum.On() {
		fam.Buy = append(fam.Buy, Rule{Name: "rsi-giro", Check: func(c Context) (string, bool) {
			trough, ok := shape.Prev(c.Frame.RSI)
			if !c.Shape.LocalMin || !ok || trough > rc.Oversold {
				return "", false
			}
			return fmt.Sprintf("oscillator-giro: RSI turned up from oversold %.2f", trough), true
		}})
	}
	if rc.Triggers.Rising.On() {
		fam.Buy = append(fam.Buy, Rule{Name: "rsi-strength", Check: func(c Context) (string, bool) {
			v, ok := shape.Last(c.Frame.RSI)
			if !c.Shape.Rising || !ok {
				return "", false
			}
			if rc.StrengthThreshold > 0 && v < rc.StrengthThreshold {
				return "", false
			}
			return fmt.Sprintf("oscillator-strength: RSI rising at %.2f", v), true
		}})
	}
	if rc.Triggers.Maximum.On() {
		fam.Sell = append(fam.Sell, Rule{Name: "rsi-maximum", Check: func(c Context) (string, bool) {
			peak, ok := shape.Prev(c.Frame.RSI)
			if !c.Shape.LocalMax || !ok || peak < rc.Overbought {
				return "", false
			}
			return fmt.Sprintf("rsi: turned down from overbought %.2f", peak), true
		}})
	}
	if rc.Triggers.Falling.On() {
		fam.Sell = append(fam.Sell, shapeRule("rsi-falling", "rsi: falling", isFalling))
	}
	return fam
}

func macdFamily(mc config.MACDConfig) *Family {
	fam := &Family{
		ID:      FamilyMACD,
		Enabled: mc.Enabled.On(),
		Series:  func(f *model.Frame) []float64 { return f.MACDHist },
	}
	if mc.Cross.On() {
		fam.Buy = append(fam.Buy, Rule{Name: "macd-cross", Check: func(c Context) (string, bool) {
			if !shape.CrossedAbove(c.Frame.MACD, c.Frame.MACDSignal) || !c.Shape.Rising {
				return "", false
			}
			return fmt.Sprintf("momentum-cross: MACD %s crossed above signal with rising histogram %s",
				num(c.Frame.MACD), num(c.Frame.MACDHist)), true
		}})
		fam.Sell = append(fam.Sell, Rule{Name: "macd-cross", Check: func(c Context) (string, bool) {
			if !shape.CrossedBelow(c.Frame.MACD, c.Frame.MACDSignal) {
				return "", false
			}
			return fmt.Sprintf("macd: crossed below signal at %s", num(c.Frame.MACD)), true
		}})
	}
	if mc.Triggers.Minimum.On() {
		fam.Buy = append(fam.Buy, shapeRule("macd-minimum", "momentum: histogram local minimum", isLocalMin))
	}
	if mc.Triggers.Rising.On() {
		fam.Buy = append(fam.Buy, shapeRule("macd-rising", "momentum: histogram rising", isRising))
	}
	if mc.Triggers.Maximum.On() {
		fam.Sell = append(fam.Sell, shapeRule("macd-maximum", "macd: histogram local maximum", isLocalMax))
	}
	if mc.Triggers.Falling.On() {
		fam.Sell = append(fam.Sell, shapeRule("macd-falling", "macd: histogram falling", isFalling))
	}
	return fam
}

func stochFamily(id FamilyID, label string, osc func(*model.Frame) model.Oscillator, sc config.StochasticConfig) *Family {
	fam := &Family{
		ID:      id,
		Enabled: sc.Enabled.On(),
		Series:  func(f *model.Frame) []float64 { return osc(f).K },
	}
	if sc.Cross.On() {
		fam.Buy = append(fam.Buy, Rule{Name: string(id) + "-cross", Check: func(c Context) (string, bool) {
			o := osc(c.Frame)
			prevK, ok := shape.Prev(o.K)
			if !ok || prevK > sc.Oversold || !shape.CrossedAbove(o.K, o.D) {
				return "", false
			}
			return fmt.Sprintf("oscillator-giro: %s stochastic %%K crossed above %%D from oversold %.2f", label, prevK), true
		}})
		fam.Sell = append(fam.Sell, Rule{Name: string(id) + "-cross", Check: func(c Context) (string, bool) {
			o := osc(c.Frame)
			prevK, ok := shape.Prev(o.K)
			if !ok || prevK < sc.Overbought || !shape.CrossedBelow(o.K, o.D) {
				return "", false
			}
			return fmt.Sprintf("stochastic %s: %%K crossed below %%D from overbought %.2f", label, prevK), true
		}})
	}
	if sc.Triggers.Minimum.On() {
		fam.Buy = append(fam.Buy, shapeRule(string(id)+"-minimum", "oscillator: "+label+" stochastic local minimum", isLocalMin))
	}
	if sc.Triggers.Rising.On() {
		fam.Buy = append(fam.Buy, shapeRule(string(id)+"-rising", "oscillator: "+label+" stochastic rising", isRising))
	}
	if sc.Triggers.Maximum.On() {
		fam.Sell = append(fam.Sell, shapeRule(string(id)+"-maximum", "stochastic "+label+": local maximum", isLocalMax))
	}
	if sc.Triggers.Falling.On() {
		fam.Sell = append(fam.Sell, shapeRule(string(id)+"-falling", "stochastic "+label+": falling", isFalling))
	}
	return fam
}

func bandFamily(bc config.BandConfig) *Family {
	fam := &Family{
		ID:      FamilyBand,
		Enabled: bc.Enabled.On(),
		Series:  func(f *model.Frame) []float64 { return f.BandPercent },
	}
	if bc.Touch.On() {
		fam.Buy = append(fam.Buy, Rule{Name: "band-touch", Check: func(c Context) (string, bool) {
			lower, ok := shape.Last(c.Frame.BandLower)
			if !ok || !finite(c.Frame.Bar.Low) || c.Frame.Bar.Low > lower {
				return "", false
			}
			return fmt.Sprintf("band-touch: low %.4f touched lower band %.4f", c.Frame.Bar.Low, lower), true
		}})
		fam.Sell = append(fam.Sell, Rule{Name: "band-touch", Check: func(c Context) (string, bool) {
			upper, ok := shape.Last(c.Frame.BandUpper)
			if !ok || !finite(c.Frame.Bar.High) || c.Frame.Bar.High < upper {
				return "", false
			}
			return fmt.Sprintf("band: high %.4f touched upper band %.4f", c.Frame.Bar.High, upper), true
		}})
	}
	if bc.Cross.On() {
		fam.Buy = append(fam.Buy, Rule{Name: "band-cross", Check: func(c Context) (string, bool) {
			if !shape.CrossedAbove(c.Frame.Close, c.Frame.BandLower) {
				return "", false
			}
			return fmt.Sprintf("band-cross: close %s crossed back above lower band %s", num(c.Frame.Close), num(c.Frame.BandLower)), true
		}})
		fam.Sell = append(fam.Sell, Rule{Name: "band-cross", Check: func(c Context) (string, bool) {
			if !shape.CrossedBelow(c.Frame.Close, c.Frame.BandUpper) {
				return "", false
			}
			return fmt.Sprintf("band: close %s crossed back below upper band %s", num(c.Frame.Close), num(c.Frame.BandUpper)), true
		}})
	}
	if bc.Triggers.Minimum.On() {
		fam.Buy = append(fam.Buy, shapeRule("band-minimum", "band: %B local minimum", isLocalMin))
	}
	if bc.Triggers.Rising.On() {
		fam.Buy = append(fam.Buy, shapeRule("band-rising", "band: %B rising", isRising))
	}
	if bc.Triggers.Maximum.On() {
		fam.Sell = append(fam.Sell, shapeRule("band-maximum", "band: %B local maximum", isLocalMax))
	}
	if bc.Triggers.Falling.On() {
		fam.Sell = append(fam.Sell, shapeRule("band-falling", "band: %B falling", isFalling))
	}
	return fam
}
