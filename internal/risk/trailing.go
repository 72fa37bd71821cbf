// Package risk manages the trailing stop-loss of an open long position.
package risk

import (
	"time"

	"ReplayLab/internal/model"
)

// TrailingStop trails a protective level Pct below the highest price seen since entry.
type TrailingStop struct {
	Pct float64
}

// NewTrailingStop creates a TrailingStop. pct must be in [0,1).
func NewTrailingStop(pct float64) *TrailingStop {
	return &TrailingStop{Pct: pct}
}

// Open starts a position at price with the initial stop below it.
func (t *TrailingStop) Open(price float64, at time.Time) *model.Position {
	return &model.Position{
		EntryPrice: price,
		EntryTime:  at,
		Peak:       price,
		Stop:       t.level(price),
		StopSet:    true,
	}
}

// StopUpdate is the outcome of one Update.
type StopUpdate struct {
	Ratcheted bool
	Exit      bool
	// Stop is the level in force after the update.
	Stop float64
	Peak float64
}

// Update folds one bar into the position: the peak follows the bar high, the stop ratchets up to
// the new candidate when it is higher, and a close below the stop exits. The stop never moves down.
func (t *TrailingStop) Update(pos *model.Position, high, close float64) StopUpdate {
	if high > pos.Peak {
		pos.Peak = high
	}

	var out StopUpdate
	candidate := t.level(pos.Peak)
	if !pos.StopSet || candidate > pos.Stop {
		pos.Stop = candidate
		pos.StopSet = true
		out.Ratcheted = true
	}
	out.Exit = close < pos.Stop
	out.Stop = pos.Stop
	out.Peak = pos.Peak
	return out
}

func (t *TrailingStop) level(peak float64) float64 {
	return peak * (1 - t.Pct)
}
