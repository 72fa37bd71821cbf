package recorder

import (
	"time"

	"ReplayLab/internal/model"
)

// RunInfo describes one backtest run.
type RunInfo struct {
	ID        string
	StartedAt time.Time
	Symbols   []string
	// Config is the YAML rendering of the strategy configuration the run used.
	Config string
}

// Recorder persists the decision log and trade log of every run.
type Recorder interface {
	RecordRun(run *RunInfo) error
	RecordDecision(runID string, ev model.DecisionEvent) error
	RecordTrade(runID string, t model.Trade) error
	Close() error
}
