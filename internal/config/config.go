package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Run struct {
		Symbols []string `yaml:"symbols"`
		DataDir string   `yaml:"data_dir"`
		Workers int      `yaml:"workers"`
		OutDir  string   `yaml:"out_dir"`
	} `yaml:"run"`
	Strategy  RunConfig `yaml:"strategy"`
	Execution struct {
		InitialCapital float64 `yaml:"initial_capital"`
		CommissionPct  float64 `yaml:"commission_pct"`
	} `yaml:"execution"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
}

// LoadDotEnv loads the given .env files into the process environment. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
		log.Debugf("loaded environment from %s", p)
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides and defaults.
// A missing file is not an error; the defaults describe a runnable configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{Strategy: DefaultRunConfig()}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse config: %v", ErrInvalidConfig, err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Run.Symbols = SplitSymbols(v)
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Run.DataDir = v
	}
	if v := os.Getenv("OUT_DIR"); v != "" {
		cfg.Run.OutDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Run.Workers = n
		} else {
			log.Warnf("ignoring WORKERS=%q: %v", v, err)
		}
	}
	if v := os.Getenv("STOP_LOSS_PCT"); v != "" {
		if pct, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Strategy.StopLossPct = pct
		} else {
			log.Warnf("ignoring STOP_LOSS_PCT=%q: %v", v, err)
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Run.DataDir == "" {
		c.Run.DataDir = "data/bars"
	}
	if c.Run.Workers == 0 {
		c.Run.Workers = 4
	}
	if c.Run.OutDir == "" {
		c.Run.OutDir = "out"
	}
	if c.Execution.InitialCapital == 0 {
		c.Execution.InitialCapital = 10000
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Strategy.ApplyDefaults()
}

// Validate checks that the configuration can start a run.
func (c *Config) Validate() error {
	if len(c.Run.Symbols) == 0 {
		return fmt.Errorf("%w: run.symbols is required", ErrInvalidConfig)
	}
	if c.Run.Workers < 1 {
		return fmt.Errorf("%w: run.workers must be positive", ErrInvalidConfig)
	}
	if c.Execution.InitialCapital <= 0 {
		return fmt.Errorf("%w: execution.initial_capital must be positive", ErrInvalidConfig)
	}
	if c.Execution.CommissionPct < 0 || c.Execution.CommissionPct >= 1 {
		return fmt.Errorf("%w: execution.commission_pct must be in [0,1)", ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	return c.Strategy.Validate()
}

// SplitSymbols parses a comma separated symbol list, upper-casing and dropping blanks.
func SplitSymbols(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
