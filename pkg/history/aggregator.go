package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vikboyechko/pricetracker/pkg/logging"
	"github.com/vikboyechko/pricetracker/pkg/metrics"
	"github.com/vikboyechko/pricetracker/pkg/store"
)

// Aggregator applies observations to persisted histories. Updates for a
// given key are serialized with a per-key lock; the store itself offers no
// transactions.
type Aggregator struct {
	store  store.Store
	logger *logging.Logger

	mu       sync.Mutex
	keyLocks map[string]*sync.Mutex
}

// NewAggregator creates an aggregator over the given store.
func NewAggregator(st store.Store, logger *logging.Logger) *Aggregator {
	return &Aggregator{
		store:    st,
		logger:   logger,
		keyLocks: make(map[string]*sync.Mutex),
	}
}

// RecordObservation records a newly observed price for the product key.
//
// Semantics:
//   - a record is created lazily on the first observation for a key;
//   - an observation equal to the most recent entry is suppressed (the title
//     is still refreshed), keeping re-extraction of an unchanged page
//     idempotent;
//   - the log is capped at MaxObservations, oldest first;
//   - the lowest price and its date update only when strictly undercut.
//
// The update is computed on a private copy and written in one Set call: a
// persistence failure leaves the stored record intact and is returned to the
// caller.
func (a *Aggregator) RecordObservation(ctx context.Context, key, title string, price decimal.Decimal, now time.Time) (*ProductHistory, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPrice, price.String())
	}
	price = price.Round(2)

	lock := a.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	hist, err := a.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if hist == nil {
		hist = &ProductHistory{ProductTitle: title}
	}

	// Duplicate of the most recent entry: history only grows on change
	if last, ok := hist.Last(); ok && last.Price.Equal(price) {
		metrics.RecordSuppressedObservation()
		if title != "" && title != hist.ProductTitle {
			hist.ProductTitle = title
			if err := a.persist(ctx, key, hist); err != nil {
				return nil, err
			}
		}
		return hist, nil
	}

	if title != "" {
		hist.ProductTitle = title
	}

	hist.Prices = append(hist.Prices, Observation{Price: price, Timestamp: now})
	if len(hist.Prices) > MaxObservations {
		hist.Prices = hist.Prices[len(hist.Prices)-MaxObservations:]
	}

	newLowest := hist.LowestPriceDate == nil || price.LessThan(hist.LowestPrice)
	if newLowest {
		hist.LowestPrice = price
		ts := now
		hist.LowestPriceDate = &ts
	}

	if err := a.persist(ctx, key, hist); err != nil {
		return nil, err
	}

	metrics.RecordObservation(newLowest)
	a.logger.Debug("Recorded observation",
		"key", key,
		"price", price.StringFixed(2),
		"lowest", hist.LowestPrice.StringFixed(2),
		"entries", len(hist.Prices))

	return hist, nil
}

// History returns the persisted history for a key.
func (a *Aggregator) History(ctx context.Context, key string) (*ProductHistory, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	hist, err := a.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if hist == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return hist, nil
}

// load reads and decodes one record; nil means the key has no history yet.
func (a *Aggregator) load(ctx context.Context, key string) (*ProductHistory, error) {
	values, err := a.store.Get(ctx, []string{key})
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	raw, ok := values[key]
	if !ok {
		return nil, nil
	}

	var hist ProductHistory
	if err := json.Unmarshal(raw, &hist); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, key, err)
	}
	return &hist, nil
}

func (a *Aggregator) persist(ctx context.Context, key string, hist *ProductHistory) error {
	raw, err := json.Marshal(hist)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := a.store.Set(ctx, map[string][]byte{key: raw}); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}

// lockFor returns the mutex serializing updates to one key.
func (a *Aggregator) lockFor(key string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	lock, ok := a.keyLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		a.keyLocks[key] = lock
	}
	return lock
}
