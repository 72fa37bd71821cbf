package recorder

import "ReplayLab/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *RunInfo) error                          { return nil }
func (n *NoopRecorder) RecordDecision(_ string, _ model.DecisionEvent) error { return nil }
func (n *NoopRecorder) RecordTrade(_ string, _ model.Trade) error           { return nil }
func (n *NoopRecorder) Close() error                                        { return nil }
