// Package config provides configuration loading and validation for pricetracker.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from YAML file and environment variables.
func Load(path string) (*Config, error) {
	// Validate and sanitize path
	cleanPath := filepath.Clean(path)
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	// Read config file
	data, err := os.ReadFile(absPath) // #nosec G304 -- Path sanitized with filepath.Clean and filepath.Abs
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in YAML
	expanded := os.ExpandEnv(string(data))

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply defaults
	ApplyDefaults(&cfg)

	return &cfg, nil
}

// Default returns a configuration with all defaults applied, no file needed.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets default values for optional fields.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.HTTP.Addr == "" {
		cfg.Server.HTTP.Addr = ":8080"
	}
	if cfg.Server.WebSocket.Enabled && cfg.Server.WebSocket.Addr == "" {
		cfg.Server.WebSocket.Addr = ":8081"
	}

	// Storage defaults
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "sqlite"
	}
	if cfg.Storage.Type == "sqlite" && cfg.Storage.Path == "" {
		cfg.Storage.Path = "data/pricetracker.db"
	}

	// Fetch defaults
	if cfg.Fetch.Timeout.ToDuration() == 0 {
		cfg.Fetch.Timeout = Duration(10 * time.Second)
	}
	if cfg.Fetch.Retries == 0 {
		cfg.Fetch.Retries = 4
	}
	if cfg.Fetch.Backoff.ToDuration() == 0 {
		cfg.Fetch.Backoff = Duration(500 * time.Millisecond)
	}

	// Extractor defaults
	if cfg.Extractor.MinAmount == 0 {
		cfg.Extractor.MinAmount = 0.01
	}
	if cfg.Extractor.MaxAmount == 0 {
		cfg.Extractor.MaxAmount = 100000
	}
	applyHeuristicDefaults(&cfg.Extractor.Heuristic)

	// Metrics defaults
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9091"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// applyHeuristicDefaults fills in the converged scoring constants.
func applyHeuristicDefaults(h *HeuristicConfig) {
	if h.FontSizeFactor == 0 {
		h.FontSizeFactor = 2.0
	}
	if h.PriceAncestorBonus == 0 {
		h.PriceAncestorBonus = 100
	}
	if h.BandBonus == 0 {
		h.BandBonus = 50
	}
	if h.BandLow == 0 {
		h.BandLow = 10
	}
	if h.BandHigh == 0 {
		h.BandHigh = 10000
	}
	if h.VisibleBonus == 0 {
		h.VisibleBonus = 30
	}
	if h.SaleBonus == 0 {
		h.SaleBonus = 25
	}
	if len(h.ExclusionPhrases) == 0 {
		h.ExclusionPhrases = []string{"per item", "was $", "reg. $", "regular $", "original $"}
	}
	if len(h.SalePhrases) == 0 {
		h.SalePhrases = []string{"sale", "now", "special buy"}
	}
}
