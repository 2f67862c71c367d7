package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8080", cfg.Server.HTTP.Addr)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "data/pricetracker.db", cfg.Storage.Path)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout.ToDuration())
	assert.Equal(t, 4, cfg.Fetch.Retries)
	assert.InDelta(t, 0.01, cfg.Extractor.MinAmount, 1e-9)
	assert.InDelta(t, 100000, cfg.Extractor.MaxAmount, 1e-9)
	assert.InDelta(t, 2.0, cfg.Extractor.Heuristic.FontSizeFactor, 1e-9)
	assert.InDelta(t, 100, cfg.Extractor.Heuristic.PriceAncestorBonus, 1e-9)
	assert.Contains(t, cfg.Extractor.Heuristic.ExclusionPhrases, "was $")
	assert.Contains(t, cfg.Extractor.Heuristic.SalePhrases, "sale")
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	require.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	content := `
server:
  http:
    addr: ":9000"
  websocket:
    enabled: true

storage:
  type: "memory"

fetch:
  timeout: "5s"
  retries: 2
  backoff: "250ms"

extractor:
  min_amount: 1
  max_amount: 500
  sites:
    - host: "example."
      selectors:
        - ".price"

tracking:
  track_domain: true
  enabled: true

logging:
  level: "debug"
  format: "text"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	assert.Equal(t, ":9000", cfg.Server.HTTP.Addr)
	assert.Equal(t, ":8081", cfg.Server.WebSocket.Addr, "enabled websocket gets default addr")
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout.ToDuration())
	assert.Equal(t, 250*time.Millisecond, cfg.Fetch.Backoff.ToDuration())
	assert.InDelta(t, 500, cfg.Extractor.MaxAmount, 1e-9)
	require.Len(t, cfg.Extractor.Sites, 1)
	assert.Equal(t, "example.", cfg.Extractor.Sites[0].Host)
	assert.True(t, cfg.Tracking.TrackDomain)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_DB_PATH", "/tmp/custom.db")

	content := `
storage:
  type: "sqlite"
  path: "${TEST_DB_PATH}"
logging:
  level: "info"
  format: "json"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", cfg.Storage.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			"unknown storage type",
			func(c *Config) { c.Storage.Type = "redis" },
			ErrInvalidStorageType,
		},
		{
			"sqlite without path",
			func(c *Config) { c.Storage.Path = "" },
			ErrStoragePathRequired,
		},
		{
			"negative retries",
			func(c *Config) { c.Fetch.Retries = -1 },
			ErrInvalidRetries,
		},
		{
			"inverted amount range",
			func(c *Config) { c.Extractor.MinAmount = 10; c.Extractor.MaxAmount = 5 },
			ErrInvalidAmountRange,
		},
		{
			"site rule without host",
			func(c *Config) {
				c.Extractor.Sites = []SiteRule{{Selectors: []string{".p"}}}
			},
			ErrSiteRuleHostRequired,
		},
		{
			"site rule without selectors",
			func(c *Config) {
				c.Extractor.Sites = []SiteRule{{Host: "example."}}
			},
			ErrSiteRuleSelectorsRequired,
		},
		{
			"bad log level",
			func(c *Config) { c.Logging.Level = "loud" },
			ErrInvalidLogLevel,
		},
		{
			"bad log format",
			func(c *Config) { c.Logging.Format = "xml" },
			ErrInvalidLogFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	content := `
fetch:
  timeout: "1m30s"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Fetch.Timeout.ToDuration())
}
