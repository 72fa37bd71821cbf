package strategy

import (
	"ReplayLab/internal/model"
	"ReplayLab/internal/shape"
)

// Tracker caches the shape state of every family for the current bar.
type Tracker struct {
	families []*Family
	lookback int
	states   map[FamilyID]shape.State
}

// NewTracker creates a Tracker over families classifying with the given lookback.
func NewTracker(families []*Family, lookback int) *Tracker {
	return &Tracker{
		families: families,
		lookback: lookback,
		states:   make(map[FamilyID]shape.State, len(families)),
	}
}

// Update classifies every tracked family against the frame. Untracked families are reset to the
// zero state so a stale value can never be read.
func (t *Tracker) Update(f *model.Frame) {
	for _, fam := range t.families {
		if !fam.Tracked() {
			t.states[fam.ID] = shape.State{}
			continue
		}
		t.states[fam.ID] = shape.Classify(fam.Series(f), t.lookback)
	}
}

// State returns the cached state of a family.
func (t *Tracker) State(id FamilyID) shape.State {
	return t.states[id]
}

// Context builds the rule context of a family for the frame.
func (t *Tracker) Context(id FamilyID, f *model.Frame) Context {
	return Context{Frame: f, Shape: t.states[id]}
}
