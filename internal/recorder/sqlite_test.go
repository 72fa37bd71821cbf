package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReplayLab/internal/model"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "replay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_DecisionRoundTrip(t *testing.T) {
	r := openTemp(t)
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.RecordRun(&RunInfo{ID: "run-1", StartedAt: at, Symbols: []string{"ACME", "GLOBEX"}}))
	events := []model.DecisionEvent{
		{Symbol: "ACME", Kind: model.DecisionBuy, Bar: 3, Time: at, Price: 100, Reasons: []string{"trend-shape: MA rising"}},
		{Symbol: "ACME", Kind: model.DecisionStopLossRatchet, Bar: 4, Time: at.AddDate(0, 0, 1), Price: 104.5, Reasons: []string{"stop raised"}},
		{Symbol: "GLOBEX", Kind: model.DecisionBuy, Bar: 1, Time: at, Price: 20, Reasons: []string{"passive"}},
	}
	for _, ev := range events {
		require.NoError(t, r.RecordDecision("run-1", ev))
	}

	got, err := r.Decisions("run-1", "ACME")
	require.NoError(t, err)
	assert.Equal(t, events[:2], got)

	got, err = r.Decisions("run-2", "ACME")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteRecorder_RecordTrade(t *testing.T) {
	r := openTemp(t)
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.RecordTrade("run-1", model.Trade{
		Symbol: "ACME", EntryTime: at, ExitTime: at.AddDate(0, 0, 5),
		EntryPrice: 100, ExitPrice: 104, Qty: 10, PnL: 40, ReturnPct: 0.04,
		ExitKind: model.DecisionStopLossExit,
	}))

	var count int
	var pnl float64
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*), SUM(pnl) FROM trades WHERE run_id = ?`, "run-1").Scan(&count, &pnl))
	assert.Equal(t, 1, count)
	assert.InDelta(t, 40, pnl, 1e-9)
}

func TestSQLiteRecorder_ReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.db")
	r, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.RecordRun(&RunInfo{ID: "a", StartedAt: time.Unix(0, 0)}))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Error(t, r.RecordRun(&RunInfo{ID: "a", StartedAt: time.Unix(0, 0)}), "duplicate run id")
}
