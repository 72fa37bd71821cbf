package model

import "time"

// DecisionKind identifies what a decision event does to the position.
type DecisionKind string

const (
	DecisionBuy             DecisionKind = "BUY"
	DecisionSell            DecisionKind = "SELL"
	DecisionStopLossRatchet DecisionKind = "STOP_LOSS_RATCHET"
	DecisionStopLossExit    DecisionKind = "STOP_LOSS_EXIT"
)

// Terminal reports whether the decision closes the open position.
func (k DecisionKind) Terminal() bool {
	return k == DecisionSell || k == DecisionStopLossExit
}

// DecisionEvent is the immutable record of one accepted decision.
type DecisionEvent struct {
	Symbol  string
	Kind    DecisionKind
	Reasons []string
	Price   float64
	Time    time.Time
	// Bar is the index of the bar the decision was taken on.
	Bar int
}

// Position is the state of the open position of one symbol.
type Position struct {
	EntryPrice float64
	EntryTime  time.Time
	// Peak is the highest price observed since entry.
	Peak float64
	// Stop is the protective trailing level. It only moves up.
	Stop float64
	// StopSet is false until the first stop level is assigned.
	StopSet bool
}

// Trade is one closed round trip.
type Trade struct {
	Symbol      string
	EntryTime   time.Time
	ExitTime    time.Time
	EntryPrice  float64
	ExitPrice   float64
	Qty         float64
	Commission  float64
	PnL         float64
	ReturnPct   float64
	EntryReason string
	ExitReason  string
	ExitKind    DecisionKind
}
