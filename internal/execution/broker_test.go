package execution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReplayLab/internal/model"
)

func decision(kind model.DecisionKind, price float64, day int, reasons ...string) model.DecisionEvent {
	return model.DecisionEvent{
		Symbol:  "ACME",
		Kind:    kind,
		Price:   price,
		Time:    time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Reasons: reasons,
	}
}

func TestBroker_RoundTripWithoutCommission(t *testing.T) {
	b := NewBroker("ACME", 10000, 0)

	require.NoError(t, b.OnDecision(decision(model.DecisionBuy, 100, 1, "trend-shape: MA rising")))
	assert.True(t, b.InPosition())
	assert.InDelta(t, 11000, b.Equity(110), 1e-6)

	require.NoError(t, b.OnDecision(decision(model.DecisionStopLossRatchet, 104.5, 2)))
	require.NoError(t, b.OnDecision(decision(model.DecisionSell, 110, 3, "technical exit", "rsi: falling")))

	trades := b.Trades()
	require.Len(t, trades, 1)
	tr := trades[0]
	assert.InDelta(t, 100, tr.Qty, 1e-9)
	assert.InDelta(t, 1000, tr.PnL, 1e-6)
	assert.InDelta(t, 0.1, tr.ReturnPct, 1e-9)
	assert.Equal(t, "trend-shape: MA rising", tr.EntryReason)
	assert.Equal(t, "technical exit; rsi: falling", tr.ExitReason)
	assert.Equal(t, model.DecisionSell, tr.ExitKind)
	assert.False(t, b.InPosition())

	curve := b.EquityCurve()
	require.Len(t, curve, 2)
	assert.InDelta(t, 10000, curve[0].Equity, 1e-9)
	assert.InDelta(t, 11000, curve[1].Equity, 1e-6)
}

func TestBroker_CommissionOnBothLegs(t *testing.T) {
	b := NewBroker("ACME", 10010, 0.001)

	require.NoError(t, b.OnDecision(decision(model.DecisionBuy, 100, 1)))
	require.NoError(t, b.OnDecision(decision(model.DecisionStopLossExit, 100, 2)))

	tr := b.Trades()[0]
	// 10000 notional, 10 in and 10 out
	assert.InDelta(t, 100, tr.Qty, 1e-9)
	assert.InDelta(t, 20, tr.Commission, 1e-6)
	assert.InDelta(t, -20, tr.PnL, 1e-6)
	assert.InDelta(t, 9990, b.Equity(0), 1e-6)
	assert.Equal(t, model.DecisionStopLossExit, tr.ExitKind)
}

func TestBroker_OnlyTerminalDecisionsClose(t *testing.T) {
	for _, kind := range []model.DecisionKind{model.DecisionSell, model.DecisionStopLossExit} {
		b := NewBroker("ACME", 1000, 0)
		require.NoError(t, b.OnDecision(decision(model.DecisionBuy, 10, 1)))
		require.NoError(t, b.OnDecision(decision(model.DecisionStopLossRatchet, 9.5, 2)))
		assert.True(t, b.InPosition(), "ratchet keeps the lot open")

		require.NoError(t, b.OnDecision(decision(kind, 12, 3)))
		assert.False(t, b.InPosition(), "%s closes the lot", kind)
		require.Len(t, b.Trades(), 1)
		assert.Equal(t, kind, b.Trades()[0].ExitKind)
	}
}

func TestBroker_RejectsOutOfOrderDecisions(t *testing.T) {
	b := NewBroker("ACME", 1000, 0)

	assert.ErrorIs(t, b.OnDecision(decision(model.DecisionSell, 10, 1)), ErrUnexpectedDecision)
	require.NoError(t, b.OnDecision(decision(model.DecisionBuy, 10, 1)))
	assert.ErrorIs(t, b.OnDecision(decision(model.DecisionBuy, 11, 2)), ErrUnexpectedDecision)
	assert.ErrorIs(t, b.OnDecision(decision(model.DecisionSell, 0, 2)), ErrInvalidPrice)
	assert.Empty(t, b.Trades())
}
