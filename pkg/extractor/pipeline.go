package extractor

import (
	"errors"
	"fmt"
	"time"

	"github.com/vikboyechko/pricetracker/pkg/logging"
	"github.com/vikboyechko/pricetracker/pkg/metrics"
	"github.com/vikboyechko/pricetracker/pkg/page"
)

// Options configures a pipeline. Zero values fall back to the defaults.
type Options struct {
	Range     AmountRange
	Heuristic Heuristics
	SiteRules []SiteRule
}

// Pipeline is the ordered resolution chain: structured data, then
// site-specific rules, then the generic heuristic. The first stage producing
// a valid positive price wins and short-circuits the rest.
type Pipeline struct {
	strategies []Strategy
	logger     *logging.Logger
}

// NewPipeline builds the standard three-stage pipeline.
func NewPipeline(logger *logging.Logger, opts Options) *Pipeline {
	if opts.Range.Max.IsZero() {
		opts.Range = DefaultAmountRange()
	}
	if opts.Heuristic.FontSizeFactor == 0 {
		opts.Heuristic = DefaultHeuristics()
	}
	if opts.SiteRules == nil {
		opts.SiteRules = DefaultSiteRules()
	}

	return &Pipeline{
		strategies: []Strategy{
			NewStructuredStrategy(logger),
			NewSiteStrategy(opts.SiteRules, opts.Range, logger),
			NewHeuristicStrategy(opts.Heuristic, opts.Range, logger),
		},
		logger: logger,
	}
}

// NewCustomPipeline builds a pipeline from an explicit strategy list, in
// priority order. Used by tests and by callers that disable stages.
func NewCustomPipeline(logger *logging.Logger, strategies ...Strategy) *Pipeline {
	return &Pipeline{strategies: strategies, logger: logger}
}

// ExtractPrice runs the stages in order and returns the winning price with
// its source element. A stage failing for any reason other than "nothing
// found" is logged and skipped; exhaustion returns ErrNoCandidate, which is
// a normal outcome for non-product pages.
func (p *Pipeline) ExtractPrice(snap *page.Snapshot) (Result, error) {
	start := time.Now()

	for _, strategy := range p.strategies {
		res, err := strategy.Extract(snap)
		if err != nil {
			if !errors.Is(err, ErrNoCandidate) {
				p.logger.Warn("Extraction stage failed, falling through",
					"stage", strategy.Name(), "error", err)
			}
			continue
		}
		if res == nil || !res.Price.IsPositive() {
			continue
		}

		metrics.RecordExtraction(strategy.Name(), "hit", time.Since(start))
		p.logger.Debug("Price extracted",
			"stage", strategy.Name(),
			"price", res.Price.StringFixed(2),
			"host", snap.Host())
		return *res, nil
	}

	metrics.RecordExtraction("none", "miss", time.Since(start))
	return Result{}, fmt.Errorf("%w: host %s", ErrNoCandidate, snap.Host())
}
