// Package history maintains per-product price history records.
package history

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxObservations is the retention cap per product key; oldest entries are
// evicted first once exceeded.
const MaxObservations = 30

// Observation is one observed price at a point in time.
type Observation struct {
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"date"`
}

// ProductHistory is the persisted record for one product key.
type ProductHistory struct {
	ProductTitle string `json:"productTitle"`

	// LowestPrice is the lowest price ever observed for this key. It is
	// monotonically non-increasing and survives retention eviction.
	LowestPrice decimal.Decimal `json:"lowestPrice"`

	// LowestPriceDate is the timestamp of the earliest observation that set
	// the current LowestPrice. Nil until the first observation.
	LowestPriceDate *time.Time `json:"lowestPriceDate"`

	// Prices is the rolling observation log, ordered by insertion time.
	Prices []Observation `json:"prices"`
}

// Last returns the most recent observation, or false when the log is empty.
func (h *ProductHistory) Last() (Observation, bool) {
	if len(h.Prices) == 0 {
		return Observation{}, false
	}
	return h.Prices[len(h.Prices)-1], true
}
