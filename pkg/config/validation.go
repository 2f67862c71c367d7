package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration for errors
func Validate(cfg *Config) error {
	// Validate storage config
	switch cfg.Storage.Type {
	case "sqlite":
		if cfg.Storage.Path == "" {
			return fmt.Errorf("storage config: %w", ErrStoragePathRequired)
		}
	case "memory":
	default:
		return fmt.Errorf("storage config: %w: %s (must be 'sqlite' or 'memory')", ErrInvalidStorageType, cfg.Storage.Type)
	}

	// Validate fetch config
	if cfg.Fetch.Retries < 0 {
		return fmt.Errorf("fetch config: %w", ErrInvalidRetries)
	}

	// Validate extractor config
	if cfg.Extractor.MinAmount <= 0 || cfg.Extractor.MinAmount >= cfg.Extractor.MaxAmount {
		return fmt.Errorf("extractor config: %w", ErrInvalidAmountRange)
	}
	for i, rule := range cfg.Extractor.Sites {
		if strings.TrimSpace(rule.Host) == "" {
			return fmt.Errorf("extractor config: site rule %d: %w", i, ErrSiteRuleHostRequired)
		}
		if len(rule.Selectors) == 0 {
			return fmt.Errorf("extractor config: site rule %d (%s): %w", i, rule.Host, ErrSiteRuleSelectorsRequired)
		}
	}

	// Validate logging config
	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func validateLoggingConfig(cfg *LoggingConfig) error {
	level := strings.ToLower(cfg.Level)
	switch level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return fmt.Errorf("%w: %s", ErrInvalidLogLevel, cfg.Level)
	}

	format := strings.ToLower(cfg.Format)
	if format != "json" && format != "text" {
		return fmt.Errorf("%w: %s (must be 'json' or 'text')", ErrInvalidLogFormat, cfg.Format)
	}

	return nil
}
