package strategy

import "ReplayLab/internal/model"

// ReasonTechnicalExit heads the trail of every technical exit.
const ReasonTechnicalExit = "technical exit"

// SellDecider evaluates exits in a fixed family priority, first match wins.
type SellDecider struct {
	priority []*Family
}

// NewSellDecider creates a SellDecider. The order of families is the exit priority.
func NewSellDecider(priority []*Family) *SellDecider {
	return &SellDecider{priority: priority}
}

// Priority returns the exit priority order.
func (s *SellDecider) Priority() []FamilyID {
	ids := make([]FamilyID, len(s.priority))
	for i, f := range s.priority {
		ids[i] = f.ID
	}
	return ids
}

// Decide returns the winning exit reason. When no family is enabled for exit it always declines and
// the trailing stop alone guards the position.
func (s *SellDecider) Decide(f *model.Frame, t *Tracker) (string, bool) {
	for _, fam := range s.priority {
		if !fam.ExitEnabled() {
			continue
		}
		ctx := t.Context(fam.ID, f)
		for _, r := range fam.Sell {
			if reason, ok := r.Check(ctx); ok {
				return reason, true
			}
		}
	}
	return "", false
}
