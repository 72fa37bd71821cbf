package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ReplayLab/internal/collector"
	"ReplayLab/internal/config"
	"ReplayLab/internal/metrics"
	"ReplayLab/internal/recorder"
	"ReplayLab/internal/report"
	"ReplayLab/internal/runner"
)

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay historical bars through the multi-indicator strategy",
	Long: `backtest replays the OHLCV history of every configured symbol bar by bar, records each
entry, exit and stop decision, and writes a trade log and a performance summary.`,
	SilenceUsage: true,
	RunE:         run,
}

func main() {
	rootCmd.Flags().String("config", "configs/config.yaml", "Path to the YAML config file (env CONFIG_PATH).")
	rootCmd.Flags().String("env-file", ".env", "Optional .env file loaded before environment overrides.")
	rootCmd.Flags().String("symbols", "", "Comma separated symbols, overriding run.symbols.")
	rootCmd.Flags().String("out", "", "Output directory, overriding run.out_dir.")
	rootCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090.")
	rootCmd.Flags().String("log-level", "", "Log level, overriding log.level.")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	cfgPath, _ := cmd.Flags().GetString("config")
	if v := os.Getenv("CONFIG_PATH"); v != "" && !cmd.Flags().Changed("config") {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if v, _ := cmd.Flags().GetString("symbols"); v != "" {
		cfg.Run.Symbols = config.SplitSymbols(v)
	}
	if v, _ := cmd.Flags().GetString("out"); v != "" {
		cfg.Run.OutDir = v
	}
	if v, _ := cmd.Flags().GetString("metrics-addr"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	setupLogging(cfg)

	log.WithField("config", cfgPath).Info("ReplayLab starting...")

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warnf("init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	m := metrics.NewMetrics()
	if cfg.Metrics.Addr != "" {
		srv := metrics.NewServer(cfg.Metrics.Addr, m)
		srv.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(ctx); err != nil {
				log.Warnf("metrics server shutdown: %v", err)
			}
		}()
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source := collector.NewCSVSource(cfg.Run.DataDir)
	log.Infof("data source: %s (%s)", source.Name(), cfg.Run.DataDir)

	r := runner.New(collector.NewCollector(source), rec, m, cfg.Strategy, runner.Options{
		Workers:        cfg.Run.Workers,
		InitialCapital: cfg.Execution.InitialCapital,
		CommissionPct:  cfg.Execution.CommissionPct,
	})
	res, err := r.Run(ctx, cfg.Run.Symbols)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	outDir := filepath.Join(cfg.Run.OutDir, res.RunID)
	if err := report.WriteTradesCSV(filepath.Join(outDir, "trades.csv"), res.Trades); err != nil {
		return err
	}
	rep := res.Report()
	if err := report.SaveResult(filepath.Join(outDir, "result.json"), rep); err != nil {
		return fmt.Errorf("save result: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), report.FormatSummary(res.RunID, res.StartedAt, rep.Symbols, res.Total))
	for sym, reason := range rep.Failed {
		log.WithField("symbol", sym).Warnf("not replayed: %s", reason)
	}
	log.WithField("out", outDir).Info("ReplayLab finished")
	return nil
}

func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Log.JSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetOutput(os.Stderr)
}
