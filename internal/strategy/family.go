// Package strategy turns per-bar indicator series into entry and exit decisions.
//
// Every indicator group is a Family: a primary series accessor plus ordered buy and sell rules,
// built once per run from the RunConfig. The Tracker classifies each family's series every bar,
// then the BuyDecider (OR pass, veto, AND filters) or the SellDecider (first match wins) runs
// against those cached states.
package strategy

import (
	"fmt"
	"math"

	"ReplayLab/internal/model"
	"ReplayLab/internal/shape"
)

// FamilyID names an indicator family.
type FamilyID string

const (
	FamilyTrend       FamilyID = "trend"
	FamilyRSI         FamilyID = "rsi"
	FamilyMACD        FamilyID = "macd"
	FamilyStochFast   FamilyID = "stoch-fast"
	FamilyStochMid    FamilyID = "stoch-mid"
	FamilyStochSlow   FamilyID = "stoch-slow"
	FamilyBand        FamilyID = "band"
	FamilyVolume      FamilyID = "volume"
	FamilyFundamental FamilyID = "fundamental"
)

// Context is what a rule sees: the visible frame and its own family's shape at this bar.
type Context struct {
	Frame *model.Frame
	Shape shape.State
}

// Rule is one condition of a family. Check returns the reason text when the rule fires.
type Rule struct {
	Name  string
	Check func(c Context) (string, bool)
}

// Family is one indicator group.
type Family struct {
	ID      FamilyID
	Enabled bool
	// AlwaysTracked keeps the shape state live while the family's own signals are disabled.
	AlwaysTracked bool
	Series        func(f *model.Frame) []float64
	Buy           []Rule
	Sell          []Rule
}

// Tracked reports whether the tracker classifies this family.
func (f *Family) Tracked() bool { return f.Enabled || f.AlwaysTracked }

// ExitEnabled reports whether the family can close a position.
func (f *Family) ExitEnabled() bool { return f.Enabled && len(f.Sell) > 0 }

// shapeRule fires when the family's shape flag selected by pick is set.
func shapeRule(name, reason string, pick func(shape.State) bool) Rule {
	return Rule{
		Name: name,
		Check: func(c Context) (string, bool) {
			if !pick(c.Shape) {
				return "", false
			}
			return reason, true
		},
	}
}

func isLocalMin(s shape.State) bool { return s.LocalMin }
func isLocalMax(s shape.State) bool { return s.LocalMax }
func isRising(s shape.State) bool   { return s.Rising }
func isFalling(s shape.State) bool  { return s.Falling }

// num formats the newest sample of a series for reason trails.
func num(series []float64) string {
	v, ok := shape.Last(series)
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
