// Package store provides the persistent key-value store backing price history.
package store

import "context"

// Store is the narrow collaborator contract the aggregator persists through:
// batched get and set over opaque values, no transactions.
type Store interface {
	// Get returns the values for the given keys. Missing keys are simply
	// absent from the result, not an error.
	Get(ctx context.Context, keys []string) (map[string][]byte, error)

	// Set writes all entries. No atomicity is guaranteed across keys.
	Set(ctx context.Context, entries map[string][]byte) error

	// Close releases the underlying resources.
	Close() error
}
