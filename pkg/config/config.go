// Package config loads run configuration from a YAML file, layered with
// environment overrides. The result is an explicit struct passed by
// value into the core; nothing here is a process-wide singleton.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ducminhle1904/quantsim/internal/risk"
)

type Config struct {
	Symbol         string  `yaml:"symbol"`
	DataFile       string  `yaml:"data_file"`
	InitialBalance float64 `yaml:"initial_balance"`
	Commission     float64 `yaml:"commission"`
	SlippagePct    float64 `yaml:"slippage_pct"`
	LogLevel       string  `yaml:"log_level"`

	Risk        risk.Config       `yaml:"risk"`
	Strategy    StrategyConfig    `yaml:"strategy"`
	WalkForward WalkForwardConfig `yaml:"walk_forward"`
	Grid        GridConfig        `yaml:"grid"`
	Output      OutputConfig      `yaml:"output"`
	Monitoring  MonitoringConfig  `yaml:"monitoring"`
}

type StrategyConfig struct {
	Name   string             `yaml:"name"`
	Params map[string]float64 `yaml:"params"`
}

type WalkForwardConfig struct {
	TrainBars int `yaml:"train_bars"`
	TestBars  int `yaml:"test_bars"`
	StepBars  int `yaml:"step_bars"`
	Workers   int `yaml:"workers"`
}

// GridConfig maps a parameter name to its candidate values for the
// optimizer sweep.
type GridConfig map[string][]float64

type OutputConfig struct {
	Dir   string `yaml:"dir"`
	CSV   bool   `yaml:"csv"`
	Excel bool   `yaml:"excel"`
}

type MonitoringConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Default returns the baseline configuration a YAML file overlays.
func Default() Config {
	return Config{
		Symbol:         "BTCUSDT",
		InitialBalance: 10000,
		Commission:     0.001,
		SlippagePct:    0.0005,
		LogLevel:       "info",
		Risk:           risk.DefaultConfig(),
		Strategy:       StrategyConfig{Name: "ema_crossover"},
		WalkForward:    WalkForwardConfig{TrainBars: 1000, TestBars: 250, StepBars: 250},
		Output:         OutputConfig{Dir: "results", CSV: true},
		Monitoring:     MonitoringConfig{Port: 9090},
	}
}

// Load reads the YAML file at path, applies environment overrides and
// validates the result. An empty path loads defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Symbol = getEnv("QUANTSIM_SYMBOL", c.Symbol)
	c.DataFile = getEnv("QUANTSIM_DATA_FILE", c.DataFile)
	c.LogLevel = getEnv("QUANTSIM_LOG_LEVEL", c.LogLevel)
	c.InitialBalance = getEnvFloat("QUANTSIM_INITIAL_BALANCE", c.InitialBalance)
	c.WalkForward.Workers = getEnvInt("QUANTSIM_WORKERS", c.WalkForward.Workers)
	c.Monitoring.Port = getEnvInt("QUANTSIM_MONITORING_PORT", c.Monitoring.Port)
}

func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("config: symbol is required")
	}
	if c.InitialBalance <= 0 {
		return fmt.Errorf("config: initial_balance must be positive, got %v", c.InitialBalance)
	}
	if c.Commission < 0 || c.SlippagePct < 0 {
		return fmt.Errorf("config: commission and slippage_pct must be non-negative")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("config: strategy.name is required")
	}
	if err := c.Risk.Validate(); err != nil {
		return err
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
