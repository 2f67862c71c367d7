package config

import "time"

// Config is the root configuration structure
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Tracking  TrackingConfig  `yaml:"tracking"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig configures the API server component
type ServerConfig struct {
	HTTP      HTTPConfig `yaml:"http"`
	WebSocket WSConfig   `yaml:"websocket"`
}

// HTTPConfig configures the HTTP server
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// WSConfig configures the WebSocket server
type WSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// StorageConfig configures the key-value store backing price history
type StorageConfig struct {
	Type string `yaml:"type"` // "sqlite" or "memory"
	Path string `yaml:"path"` // database path for sqlite
}

// FetchConfig configures product page fetching
type FetchConfig struct {
	Timeout   Duration `yaml:"timeout"`
	Retries   int      `yaml:"retries"`
	Backoff   Duration `yaml:"backoff"`
	UserAgent string   `yaml:"user_agent"`
}

// ExtractorConfig configures the price candidate extractor
type ExtractorConfig struct {
	MinAmount float64         `yaml:"min_amount"`
	MaxAmount float64         `yaml:"max_amount"`
	Heuristic HeuristicConfig `yaml:"heuristic"`
	Sites     []SiteRule      `yaml:"sites"`
}

// HeuristicConfig holds the empirically tuned scoring constants.
// These are configuration, not law; defaults match the converged tuning.
type HeuristicConfig struct {
	FontSizeFactor     float64  `yaml:"font_size_factor"`
	PriceAncestorBonus float64  `yaml:"price_ancestor_bonus"`
	BandBonus          float64  `yaml:"band_bonus"`
	BandLow            float64  `yaml:"band_low"`
	BandHigh           float64  `yaml:"band_high"`
	VisibleBonus       float64  `yaml:"visible_bonus"`
	SaleBonus          float64  `yaml:"sale_bonus"`
	ExclusionPhrases   []string `yaml:"exclusion_phrases"`
	SalePhrases        []string `yaml:"sale_phrases"`
}

// SiteRule maps a host pattern to an ordered list of selectors tried in order.
// Site rules are data, not code; new sites are added by registry entry.
type SiteRule struct {
	Host      string   `yaml:"host"`      // substring matched against the page host
	Selectors []string `yaml:"selectors"` // CSS selectors, first parseable match wins
	Attr      string   `yaml:"attr"`      // optional attribute holding the amount (default: text)
}

// TrackingConfig holds the initial tracking toggle options
type TrackingConfig struct {
	TrackDomain bool `yaml:"track_domain"`
	TrackPage   bool `yaml:"track_page"`
	Enabled     bool `yaml:"enabled"`
}

// MetricsConfig configures Prometheus metrics
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Duration is a wrapper around time.Duration for YAML parsing
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	td, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(td)
	return nil
}

// ToDuration converts Duration to time.Duration
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}
