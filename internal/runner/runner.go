// Package runner replays every symbol of a backtest on a bounded worker pool.
package runner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"ReplayLab/internal/collector"
	"ReplayLab/internal/config"
	"ReplayLab/internal/events"
	"ReplayLab/internal/execution"
	"ReplayLab/internal/metrics"
	"ReplayLab/internal/model"
	"ReplayLab/internal/recorder"
	"ReplayLab/internal/report"
	"ReplayLab/internal/strategy"
)

// Options are the run-wide execution settings.
type Options struct {
	Workers        int
	InitialCapital float64
	CommissionPct  float64
}

// Runner manages one backtest run.
type Runner struct {
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics
	Strategy  config.RunConfig
	Options   Options
}

// New creates a Runner. A nil recorder records nothing; nil metrics get a private registry.
func New(col *collector.Collector, rec recorder.Recorder, m *metrics.Metrics, rc config.RunConfig, opts Options) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if m == nil {
		m = metrics.NewMetrics()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Runner{Collector: col, Recorder: rec, Metrics: m, Strategy: rc, Options: opts}
}

// SymbolResult is the outcome of one symbol.
type SymbolResult struct {
	Symbol    string
	Bars      int
	Faults    int
	Decisions []model.DecisionEvent
	Trades    []model.Trade
	Summary   report.Summary
	// Err is set when the symbol could not be loaded. Other symbols are unaffected.
	Err error
}

// Result is the outcome of a run. Symbols are in ascending symbol order whatever the
// completion order of the workers was.
type Result struct {
	RunID     string
	StartedAt time.Time
	Symbols   []SymbolResult
	Trades    []model.Trade
	Total     report.Summary
}

// Report converts the result for output.
func (r *Result) Report() *report.Result {
	out := &report.Result{RunID: r.RunID, StartedAt: r.StartedAt, Total: r.Total}
	for _, s := range r.Symbols {
		if s.Err != nil {
			if out.Failed == nil {
				out.Failed = make(map[string]string)
			}
			out.Failed[s.Symbol] = s.Err.Error()
			continue
		}
		out.Symbols = append(out.Symbols, s.Summary)
	}
	return out
}

// Run replays symbols concurrently. Only cancellation of ctx aborts the run; a symbol that
// fails to load is reported in its SymbolResult.
func (r *Runner) Run(ctx context.Context, symbols []string) (*Result, error) {
	symbols = uniqueSorted(symbols)
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols", config.ErrInvalidConfig)
	}

	res := &Result{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}
	logger := log.WithField("run_id", res.RunID)

	cfgText, err := yaml.Marshal(r.Strategy)
	if err != nil {
		return nil, fmt.Errorf("encode strategy: %w", err)
	}
	if err := r.Recorder.RecordRun(&recorder.RunInfo{
		ID:        res.RunID,
		StartedAt: res.StartedAt,
		Symbols:   symbols,
		Config:    string(cfgText),
	}); err != nil {
		logger.WithError(err).Error("record run")
	}

	logger.WithFields(log.Fields{"symbols": len(symbols), "workers": r.Options.Workers}).Info("backtest started")

	results := make([]SymbolResult, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Options.Workers)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			out, err := r.replaySymbol(gctx, res.RunID, sym, r.Strategy, logger)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Symbols = results
	var parts []report.Summary
	for _, s := range results {
		if s.Err != nil {
			continue
		}
		parts = append(parts, s.Summary)
		res.Trades = append(res.Trades, s.Trades...)
	}
	res.Total = report.Combine(parts, res.Trades)

	logger.WithFields(log.Fields{
		"trades":  res.Total.Trades,
		"net_pnl": fmt.Sprintf("%.2f", res.Total.NetPnL),
	}).Info("backtest finished")
	return res, nil
}

// replaySymbol runs one symbol start to finish. rc is the worker's own copy.
func (r *Runner) replaySymbol(ctx context.Context, runID, symbol string, rc config.RunConfig, parent *log.Entry) (SymbolResult, error) {
	out := SymbolResult{Symbol: symbol}
	logger := parent.WithField("symbol", symbol)
	start := time.Now()

	ind, err := r.Collector.Collect(symbol, rc)
	if err != nil {
		logger.WithError(err).Error("symbol skipped")
		r.Metrics.SymbolsFailed.Inc()
		out.Err = err
		return out, nil
	}

	engine := strategy.NewEngine(symbol, rc, logger)
	broker := execution.NewBroker(symbol, r.Options.InitialCapital, r.Options.CommissionPct)
	bus := events.NewBus(symbol)

	subs := []struct {
		name string
		fn   func(model.DecisionEvent)
	}{
		{"log", func(ev model.DecisionEvent) { out.Decisions = append(out.Decisions, ev) }},
		{"broker", func(ev model.DecisionEvent) {
			if err := broker.OnDecision(ev); err != nil {
				logger.WithError(err).WithField("bar", ev.Bar).Error("broker rejected decision")
			}
		}},
		{"recorder", func(ev model.DecisionEvent) {
			if err := r.Recorder.RecordDecision(runID, ev); err != nil {
				logger.WithError(err).Error("record decision")
			}
		}},
		{"metrics", func(ev model.DecisionEvent) {
			r.Metrics.DecisionsTotal.WithLabelValues(symbol, string(ev.Kind)).Inc()
		}},
	}
	for _, s := range subs {
		if err := bus.Subscribe(s.name, s.fn); err != nil {
			return out, err
		}
	}

	onFault := func(error) {
		out.Faults++
		r.Metrics.FaultsTotal.WithLabelValues(symbol).Inc()
	}
	if err := engine.Replay(ctx, ind, bus.Publish, onFault); err != nil {
		return out, fmt.Errorf("replay %s: %w", symbol, err)
	}

	out.Bars = ind.Len()
	out.Trades = broker.Trades()
	for _, t := range out.Trades {
		if err := r.Recorder.RecordTrade(runID, t); err != nil {
			logger.WithError(err).Error("record trade")
		}
	}

	curve := broker.EquityCurve()
	if pos := engine.Position(); pos != nil && ind.Len() > 0 {
		// mark the open lot at the last close
		last := ind.Bars[ind.Len()-1]
		curve = append(curve, execution.EquityPoint{Time: last.Time, Equity: broker.Equity(last.Close)})
	}
	equity := make([]float64, len(curve))
	for i, p := range curve {
		equity[i] = p.Equity
	}
	out.Summary = report.Summarize(symbol, out.Trades, equity)
	out.Summary.Bars = out.Bars
	out.Summary.Faults = out.Faults

	r.Metrics.BarsTotal.WithLabelValues(symbol).Add(float64(out.Bars))
	r.Metrics.ReplayDur.Observe(time.Since(start).Seconds())
	logger.WithFields(log.Fields{
		"bars":      out.Bars,
		"decisions": len(out.Decisions),
		"trades":    len(out.Trades),
		"faults":    out.Faults,
	}).Info("symbol replayed")
	return out, nil
}

func uniqueSorted(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
