package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"ReplayLab/internal/model"
)

type tradeRecord struct {
	Symbol      string  `csv:"symbol"`
	EntryTime   string  `csv:"entry_time"`
	ExitTime    string  `csv:"exit_time"`
	EntryPrice  float64 `csv:"entry_price"`
	ExitPrice   float64 `csv:"exit_price"`
	Qty         float64 `csv:"qty"`
	Commission  float64 `csv:"commission"`
	PnL         float64 `csv:"pnl"`
	ReturnPct   float64 `csv:"return_pct"`
	ExitKind    string  `csv:"exit_kind"`
	EntryReason string  `csv:"entry_reason"`
	ExitReason  string  `csv:"exit_reason"`
}

func newTradeRecord(t model.Trade) *tradeRecord {
	return &tradeRecord{
		Symbol:      t.Symbol,
		EntryTime:   t.EntryTime.UTC().Format(time.RFC3339),
		ExitTime:    t.ExitTime.UTC().Format(time.RFC3339),
		EntryPrice:  t.EntryPrice,
		ExitPrice:   t.ExitPrice,
		Qty:         t.Qty,
		Commission:  t.Commission,
		PnL:         t.PnL,
		ReturnPct:   t.ReturnPct,
		ExitKind:    string(t.ExitKind),
		EntryReason: t.EntryReason,
		ExitReason:  t.ExitReason,
	}
}

// WriteTradesCSV writes the trade log to path, creating parent directories.
func WriteTradesCSV(path string, trades []model.Trade) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trade log: %w", err)
	}
	defer f.Close()

	records := make([]*tradeRecord, len(trades))
	for i, t := range trades {
		records[i] = newTradeRecord(t)
	}
	if err := gocsv.MarshalFile(&records, f); err != nil {
		return fmt.Errorf("write trade log: %w", err)
	}
	return nil
}

// Result is the machine-readable outcome of a run.
type Result struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Symbols   []Summary `json:"symbols"`
	Total     Summary   `json:"total"`
	// Failed lists symbols that could not be replayed, with the reason.
	Failed map[string]string `json:"failed,omitempty"`
}

// LoadResult reads a result file written by SaveResult.
func LoadResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SaveResult writes the result to a JSON file.
func SaveResult(path string, res *Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
