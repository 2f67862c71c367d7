package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vikboyechko/pricetracker/pkg/extractor"
	"github.com/vikboyechko/pricetracker/pkg/history"
	"github.com/vikboyechko/pricetracker/pkg/logging"
	"github.com/vikboyechko/pricetracker/pkg/page"
	"github.com/vikboyechko/pricetracker/pkg/store"
)

// ProductInfo is what the extractor could detect on one page: the resolved
// title and the current price.
type ProductInfo struct {
	ProductTitle string          `json:"productTitle"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
}

// Summary is the outcome of one tracking pass, combining the current
// detection with the stored history for the product key.
type Summary struct {
	ProductKey      string          `json:"productKey"`
	ProductTitle    string          `json:"productTitle"`
	CurrentPrice    decimal.Decimal `json:"currentPrice"`
	LowestPrice     decimal.Decimal `json:"lowestPrice"`
	LowestPriceDate *time.Time      `json:"lowestPriceDate"`
}

// Tracker ties the extraction pipeline to the history aggregator and owns
// the persisted tracking options.
type Tracker struct {
	pipeline *extractor.Pipeline
	agg      *history.Aggregator
	store    store.Store
	fetcher  *Fetcher
	defaults Options
	logger   *logging.Logger
}

// NewTracker creates a tracker. defaults apply until options are persisted.
func NewTracker(pipeline *extractor.Pipeline, agg *history.Aggregator, st store.Store, fetcher *Fetcher, defaults Options, logger *logging.Logger) *Tracker {
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Tracker{
		pipeline: pipeline,
		agg:      agg,
		store:    st,
		fetcher:  fetcher,
		defaults: defaults,
		logger:   logger,
	}
}

// ProductInfo runs detection on an already parsed page. Returns ErrNoProduct
// when no plausible price is found, which callers surface as "not a product
// page" rather than a failure.
func (t *Tracker) ProductInfo(snap *page.Snapshot) (*ProductInfo, error) {
	result, err := t.pipeline.ExtractPrice(snap)
	if err != nil {
		if errors.Is(err, extractor.ErrNoCandidate) {
			return nil, fmt.Errorf("%w: %s", ErrNoProduct, snap.Host())
		}
		return nil, err
	}

	title, err := extractor.ResolveTitle(snap)
	if err != nil {
		// A page with a detected price but no usable title is still a
		// product; fall back to the host so the record stays addressable.
		title = snap.Host()
	}

	return &ProductInfo{
		ProductTitle: title,
		CurrentPrice: result.Price,
	}, nil
}

// ProductKey derives the history key for a page under the given options.
// Domain scope collapses every page of a site into one record. Page scope
// prefers the page's structured product id, so the same product reached
// through different URLs shares a history; without one it keys on the
// canonical URL with query and fragment stripped, so reloads and tracking
// parameters do not split the history.
func ProductKey(snap *page.Snapshot, opts Options) string {
	u := snap.URL()
	if u == nil {
		return ""
	}
	if opts.TrackDomain {
		return u.Hostname()
	}
	if id := extractor.StructuredProductID(snap); id != "" {
		return u.Hostname() + "#" + id
	}
	canonical := *u
	canonical.RawQuery = ""
	canonical.Fragment = ""
	return canonical.String()
}

// Track runs one tracking pass for a session: detect the product, record the
// observation and return the combined summary. A session whose display marker
// is already present returns (nil, nil); the pass already happened.
func (t *Tracker) Track(ctx context.Context, session *Session, snap *page.Snapshot, now time.Time) (*Summary, error) {
	if session != nil && session.MarkerPresent() {
		return nil, nil
	}

	opts, err := t.Options(ctx)
	if err != nil {
		return nil, err
	}
	if !opts.TrackingEnabled {
		return nil, ErrTrackingDisabled
	}

	info, err := t.ProductInfo(snap)
	if err != nil {
		return nil, err
	}

	key := ProductKey(snap, opts)
	hist, err := t.agg.RecordObservation(ctx, key, info.ProductTitle, info.CurrentPrice, now)
	if err != nil {
		return nil, err
	}

	if session != nil {
		session.SetMarker()
	}

	t.logger.Info("Recorded product observation",
		"key", key,
		"title", info.ProductTitle,
		"price", info.CurrentPrice.String(),
		"lowest", hist.LowestPrice.String())

	return &Summary{
		ProductKey:      key,
		ProductTitle:    info.ProductTitle,
		CurrentPrice:    info.CurrentPrice,
		LowestPrice:     hist.LowestPrice,
		LowestPriceDate: hist.LowestPriceDate,
	}, nil
}

// OnContentChanged handles a mutated page for an existing session. The pass
// reruns only when the display marker is gone, covering single-page shops
// that swap product content in place.
func (t *Tracker) OnContentChanged(ctx context.Context, session *Session, snap *page.Snapshot, now time.Time) (*Summary, error) {
	if session.MarkerPresent() {
		return nil, nil
	}
	return t.Track(ctx, session, snap, now)
}

// Inspect fetches a URL and runs detection without recording anything.
func (t *Tracker) Inspect(ctx context.Context, url string) (*ProductInfo, error) {
	snap, err := t.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return t.ProductInfo(snap)
}

// Observe fetches a URL and runs a full tracking pass against a fresh
// session, recording the observation.
func (t *Tracker) Observe(ctx context.Context, url string, now time.Time) (*Summary, error) {
	snap, err := t.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return t.Track(ctx, NewSession(), snap, now)
}

// History returns the stored record for a product key.
func (t *Tracker) History(ctx context.Context, key string) (*history.ProductHistory, error) {
	return t.agg.History(ctx, key)
}
