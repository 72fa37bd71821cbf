package strategy

import (
	"fmt"

	"ReplayLab/internal/config"
	"ReplayLab/internal/model"
	"ReplayLab/internal/shape"
)

// Reasons appended to the trail when an entry is rejected.
const (
	ReasonVeto            = "veto: trend average falling"
	ReasonTrendAtMaximum  = "rejected: trend average at local maximum"
	ReasonTrendNotTurning = "rejected: trend requirement not met"
	ReasonNoSignal        = "rejected: no entry signal"
	ReasonPassiveHold     = "passive hold: trend average at minimum or rising"
)

// BuyDecider evaluates entries while flat.
type BuyDecider struct {
	rc       config.RunConfig
	families *Families
}

// NewBuyDecider creates a BuyDecider over the run's families.
func NewBuyDecider(rc config.RunConfig, families *Families) *BuyDecider {
	return &BuyDecider{rc: rc, families: families}
}

// Decide returns whether to open a position and the reason trail. On rejection the trail ends
// with the reason for the rejection.
func (b *BuyDecider) Decide(f *model.Frame, t *Tracker) (bool, []string) {
	var trail []string

	fired := false
	for _, fam := range b.families.Signals {
		if !fam.Enabled {
			continue
		}
		ctx := t.Context(fam.ID, f)
		for _, r := range fam.Buy {
			if reason, ok := r.Check(ctx); ok {
				fired = true
				trail = append(trail, reason)
			}
		}
	}

	trend := t.State(FamilyTrend)
	if trend.Falling {
		return false, append(trail, ReasonVeto)
	}

	if reason, ok := b.trendRequirement(trend); !ok {
		return false, append(trail, reason)
	}

	if !b.rc.SignalFamiliesEnabled() && (trend.LocalMin || trend.Rising) {
		fired = true
		trail = append(trail, ReasonPassiveHold)
	}

	if !fired {
		return false, append(trail, ReasonNoSignal)
	}

	if reason, ok := b.volumeFilter(t.Context(FamilyVolume, f)); !ok {
		return false, append(trail, reason)
	}
	if reason, ok := b.fundamentalFilter(t.Context(FamilyFundamental, f)); !ok {
		return false, append(trail, reason)
	}
	return true, trail
}

// trendRequirement applies the trend triggers as mandatory conditions once the trend family is on.
func (b *BuyDecider) trendRequirement(trend shape.State) (string, bool) {
	tc := b.rc.Trend
	if !tc.Enabled.On() {
		return "", true
	}
	if tc.Triggers.Maximum.On() && trend.LocalMax {
		return ReasonTrendAtMaximum, false
	}
	if !tc.Triggers.Entry() {
		return "", true
	}
	if (tc.Triggers.Minimum.On() && trend.LocalMin) || (tc.Triggers.Rising.On() && trend.Rising) {
		return "", true
	}
	return ReasonTrendNotTurning, false
}

// volumeFilter passes when volume is strictly above its average times the multiplier and every
// configured volume shape trigger holds.
func (b *BuyDecider) volumeFilter(c Context) (string, bool) {
	vc := b.rc.Volume
	if !vc.Enabled.On() {
		return "", true
	}
	vol, okVol := shape.Last(c.Frame.Volume)
	avg, okAvg := shape.Last(c.Frame.VolumeAvg)
	if !okVol || !okAvg {
		return "volume filter: average unavailable", false
	}
	need := avg * vc.Multiplier
	if vol <= need {
		return fmt.Sprintf("volume filter: %.2f not above %.2f", vol, need), false
	}
	if reason, ok := requireShape("volume filter", vc.Triggers, c.Shape); !ok {
		return reason, false
	}
	return "", true
}

// fundamentalFilter passes when the margin of safety is strictly above the threshold. A missing
// value fails the filter.
func (b *BuyDecider) fundamentalFilter(c Context) (string, bool) {
	fc := b.rc.Fundamental
	if !fc.Enabled.On() {
		return "", true
	}
	mos, ok := shape.Last(c.Frame.Margin)
	if !ok {
		return "fundamental filter: margin of safety unavailable", false
	}
	if mos <= fc.Threshold {
		return fmt.Sprintf("fundamental filter: margin of safety %.4f not above %.4f", mos, fc.Threshold), false
	}
	if reason, ok := requireShape("fundamental filter", fc.Triggers, c.Shape); !ok {
		return reason, false
	}
	return "", true
}

func requireShape(filter string, tr config.Triggers, st shape.State) (string, bool) {
	checks := []struct {
		on    bool
		holds bool
		name  string
	}{
		{tr.Minimum.On(), st.LocalMin, "minimum"},
		{tr.Maximum.On(), st.LocalMax, "maximum"},
		{tr.Rising.On(), st.Rising, "rising"},
		{tr.Falling.On(), st.Falling, "falling"},
	}
	for _, c := range checks {
		if c.on && !c.holds {
			return fmt.Sprintf("%s: %s state not met", filter, c.name), false
		}
	}
	return "", true
}
