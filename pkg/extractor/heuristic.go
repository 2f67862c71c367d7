package extractor

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/vikboyechko/pricetracker/pkg/logging"
	"github.com/vikboyechko/pricetracker/pkg/metrics"
	"github.com/vikboyechko/pricetracker/pkg/page"
)

// Heuristics holds the empirically tuned scoring constants of the generic
// stage. The values are carried over as-is from the converged tuning; treat
// them as configuration, not derivation.
type Heuristics struct {
	FontSizeFactor     float64
	PriceAncestorBonus float64
	BandBonus          float64
	BandLow            decimal.Decimal
	BandHigh           decimal.Decimal
	VisibleBonus       float64
	SaleBonus          float64
	ExclusionPhrases   []string
	SalePhrases        []string
}

// DefaultHeuristics returns the converged scoring constants.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		FontSizeFactor:     2.0,
		PriceAncestorBonus: 100,
		BandBonus:          50,
		BandLow:            decimal.NewFromInt(10),
		BandHigh:           decimal.NewFromInt(10000),
		VisibleBonus:       30,
		SaleBonus:          25,
		ExclusionPhrases:   []string{"per item", "was $", "reg. $", "regular $", "original $"},
		SalePhrases:        []string{"sale", "now", "special buy"},
	}
}

// parenthesizedAmount matches a dollar amount in parentheses, the common
// "(was $299.99)" comparison-price form.
var parenthesizedAmount = regexp.MustCompile(`\(\s*\$\s*[0-9][0-9.,]*\s*\)`)

// HeuristicStrategy is the generic fallback stage: it scans every leaf
// element carrying a dollar mark, builds scored candidates, drops
// disqualified ones and picks the highest-weighted survivor.
type HeuristicStrategy struct {
	cfg    Heuristics
	rng    AmountRange
	logger *logging.Logger
}

var _ Strategy = (*HeuristicStrategy)(nil)

// NewHeuristicStrategy creates the generic heuristic stage.
func NewHeuristicStrategy(cfg Heuristics, rng AmountRange, logger *logging.Logger) *HeuristicStrategy {
	return &HeuristicStrategy{cfg: cfg, rng: rng, logger: logger}
}

// Name returns the stage name.
func (h *HeuristicStrategy) Name() string {
	return "heuristic"
}

// Extract collects and ranks candidates. Ties on weight go to the candidate
// closest to the top of the document.
func (h *HeuristicStrategy) Extract(snap *page.Snapshot) (*Result, error) {
	candidates := h.collect(snap)
	if len(candidates) == 0 {
		return nil, ErrNoCandidate
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].VisualWeight != candidates[j].VisualWeight {
			return candidates[i].VisualWeight > candidates[j].VisualWeight
		}
		return candidates[i].VerticalPosition < candidates[j].VerticalPosition
	})

	winner := candidates[0]
	h.logger.Debug("Heuristic winner",
		"amount", winner.Amount.String(),
		"weight", winner.VisualWeight,
		"candidates", len(candidates))

	return &Result{Price: winner.Amount, Node: winner.Node}, nil
}

// collect builds the candidate set from leaf elements containing a dollar
// mark. A failure on one element drops that candidate only; the scan always
// continues.
func (h *HeuristicStrategy) collect(snap *page.Snapshot) []Candidate {
	var candidates []Candidate

	snap.Find("body *").Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		if !strings.Contains(text, "$") {
			return
		}
		// Leaf check: no child element also carries the mark
		if sel.Children().FilterFunction(func(_ int, child *goquery.Selection) bool {
			return strings.Contains(child.Text(), "$")
		}).Length() > 0 {
			return
		}

		metrics.RecordCandidateScanned()

		cand, ok := h.evaluate(snap, sel, text)
		if !ok {
			return
		}
		if cand.Disqualified {
			return
		}
		candidates = append(candidates, cand)
	})

	return candidates
}

// evaluate builds and scores one candidate. Parse and range failures report
// false; disqualification is flagged but still returned so callers can count
// it distinctly.
func (h *HeuristicStrategy) evaluate(snap *page.Snapshot, sel *goquery.Selection, text string) (Candidate, bool) {
	amount, err := ParseAmount(text, h.rng)
	if err != nil {
		return Candidate{}, false
	}

	cand := Candidate{
		RawText:          strings.TrimSpace(text),
		Amount:           amount,
		Node:             sel,
		VerticalPosition: snap.DocumentOffset(sel),
	}

	context := strings.ToLower(h.contextText(sel))

	// Disqualification is absolute: no score recovers an excluded candidate
	for _, phrase := range h.cfg.ExclusionPhrases {
		if strings.Contains(context, phrase) {
			metrics.RecordDisqualification(phrase)
			cand.Disqualified = true
			return cand, true
		}
	}
	if parenthesizedAmount.MatchString(context) {
		metrics.RecordDisqualification("parenthesized amount")
		cand.Disqualified = true
		return cand, true
	}

	weight := snap.FontSize(sel) * h.cfg.FontSizeFactor

	for _, phrase := range h.cfg.SalePhrases {
		if strings.Contains(context, phrase) {
			weight += h.cfg.SaleBonus
			break
		}
	}

	if hasPriceAncestor(sel) {
		weight += h.cfg.PriceAncestorBonus
	}

	if amount.GreaterThan(h.cfg.BandLow) && amount.LessThan(h.cfg.BandHigh) {
		weight += h.cfg.BandBonus
	}
	if snap.IsVisible(sel) {
		weight += h.cfg.VisibleBonus
	}

	cand.VisualWeight = weight
	return cand, true
}

// contextText assembles the text surrounding a candidate: the element, its
// parent, and the parent's other children. Exclusion phrases often live in a
// sibling ("was $299.99" next to the sale price).
func (h *HeuristicStrategy) contextText(sel *goquery.Selection) string {
	parent := sel.Parent()
	if parent.Length() == 0 {
		return sel.Text()
	}
	// Parent text already contains the element and all siblings
	return parent.Text()
}

// hasPriceAncestor reports whether the element or an ancestor carries a
// price-semantic class, id or itemprop.
func hasPriceAncestor(sel *goquery.Selection) bool {
	for cur := sel; cur.Length() > 0; cur = cur.Parent() {
		for _, attr := range []string{"class", "id", "itemprop"} {
			if v, ok := cur.Attr(attr); ok && strings.Contains(strings.ToLower(v), "price") {
				return true
			}
		}
	}
	return false
}
