// Package report turns trade logs into run summaries and output files.
package report

import (
	"math"

	"github.com/montanaflynn/stats"

	"ReplayLab/internal/model"
)

// Summary holds the performance figures of one symbol, or of a whole run when Symbol is empty.
type Summary struct {
	Symbol         string  `json:"symbol,omitempty"`
	Bars           int     `json:"bars"`
	Trades         int     `json:"trades"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	WinRate        float64 `json:"win_rate"`
	NetPnL         float64 `json:"net_pnl"`
	GrossProfit    float64 `json:"gross_profit"`
	GrossLoss      float64 `json:"gross_loss"`
	ProfitFactor   float64 `json:"profit_factor"`
	MeanReturn     float64 `json:"mean_return"`
	StdDevReturn   float64 `json:"stddev_return"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	FinalEquity    float64 `json:"final_equity"`
	TechnicalExits int     `json:"technical_exits"`
	StopExits      int     `json:"stop_exits"`
	Faults         int     `json:"faults"`
}

// Summarize computes the figures of a trade log. equity is the account value after each closed
// trade, starting with the initial capital; it drives the drawdown. ProfitFactor is 0 when there
// is no losing trade.
func Summarize(symbol string, trades []model.Trade, equity []float64) Summary {
	s := Summary{Symbol: symbol, Trades: len(trades)}

	returns := make([]float64, 0, len(trades))
	for _, t := range trades {
		s.NetPnL += t.PnL
		switch {
		case t.PnL > 0:
			s.Wins++
			s.GrossProfit += t.PnL
		case t.PnL < 0:
			s.Losses++
			s.GrossLoss += -t.PnL
		}
		if t.ExitKind == model.DecisionStopLossExit {
			s.StopExits++
		} else {
			s.TechnicalExits++
		}
		returns = append(returns, t.ReturnPct)
	}

	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades)
	}
	if s.GrossLoss > 0 {
		s.ProfitFactor = s.GrossProfit / s.GrossLoss
	}
	if mean, err := stats.Mean(returns); err == nil {
		s.MeanReturn = mean
	}
	if len(returns) > 1 {
		if sd, err := stats.StandardDeviationSample(returns); err == nil {
			s.StdDevReturn = sd
		}
	}

	s.MaxDrawdown = maxDrawdown(equity)
	if len(equity) > 0 {
		s.FinalEquity = equity[len(equity)-1]
	}
	return s
}

// maxDrawdown is the largest peak-to-trough fall of equity, as a fraction of the peak.
func maxDrawdown(equity []float64) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			if dd := (peak - e) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// Combine folds per-symbol summaries into a run total. Return statistics are recomputed from
// every trade; drawdown is the worst single-symbol drawdown.
func Combine(parts []Summary, trades []model.Trade) Summary {
	total := Summarize("", trades, nil)
	for _, p := range parts {
		total.Bars += p.Bars
		total.Faults += p.Faults
		total.FinalEquity += p.FinalEquity
		if p.MaxDrawdown > total.MaxDrawdown {
			total.MaxDrawdown = p.MaxDrawdown
		}
	}
	return total
}
