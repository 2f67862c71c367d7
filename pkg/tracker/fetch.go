package tracker

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vikboyechko/pricetracker/pkg/logging"
	"github.com/vikboyechko/pricetracker/pkg/page"
	"github.com/vikboyechko/pricetracker/pkg/version"
)

// Fetcher retrieves product pages over HTTP with a bounded number of retries
// and a fixed backoff, covering pages that are still settling when first
// requested.
type Fetcher struct {
	client    *http.Client
	retries   int
	backoff   time.Duration
	userAgent string
	logger    *logging.Logger
}

// NewFetcher creates a page fetcher.
func NewFetcher(timeout time.Duration, retries int, backoff time.Duration, userAgent string, logger *logging.Logger) *Fetcher {
	if userAgent == "" {
		userAgent = version.AgentString()
	}
	if retries < 1 {
		retries = 1
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		retries:   retries,
		backoff:   backoff,
		userAgent: userAgent,
		logger:    logger,
	}
}

// Fetch retrieves and parses the page at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*page.Snapshot, error) {
	var lastErr error

	for attempt := 1; attempt <= f.retries; attempt++ {
		snap, err := f.fetchOnce(ctx, url)
		if err == nil {
			return snap, nil
		}
		lastErr = err

		f.logger.Warn("Page fetch attempt failed",
			"url", url,
			"attempt", attempt,
			"max_retries", f.retries,
			"error", err)

		if attempt == f.retries {
			break
		}

		select {
		case <-time.After(f.backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, url, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*page.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	return page.FromReader(resp.Body, url)
}
