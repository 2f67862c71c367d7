// Package extractor implements the price candidate extraction and ranking engine.
package extractor

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/vikboyechko/pricetracker/pkg/page"
)

// Candidate is a provisional price reading taken from one element, before
// ranking. Candidates are extractor-local and never persisted.
type Candidate struct {
	RawText          string
	Amount           decimal.Decimal
	Node             *goquery.Selection
	VisualWeight     float64
	VerticalPosition int
	Disqualified     bool
}

// Result is a winning price extraction: the amount and the element it came
// from. The node is borrowed from the page and must not outlive the snapshot.
type Result struct {
	Price decimal.Decimal
	Node  *goquery.Selection
}

// Strategy is one stage of the resolution pipeline. Extract returns
// ErrNoCandidate when the stage has nothing to offer; the pipeline then falls
// through to the next stage.
type Strategy interface {
	Name() string
	Extract(snap *page.Snapshot) (*Result, error)
}

// AmountRange bounds acceptable price amounts.
type AmountRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// DefaultAmountRange is the accepted band for extracted amounts.
func DefaultAmountRange() AmountRange {
	return AmountRange{
		Min: decimal.NewFromFloat(0.01),
		Max: decimal.NewFromInt(100000),
	}
}

// Contains reports whether amount lies within the range, bounds included.
func (r AmountRange) Contains(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(r.Min) && amount.LessThanOrEqual(r.Max)
}
