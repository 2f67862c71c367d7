package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vikboyechko/pricetracker/pkg/logging"
	"github.com/vikboyechko/pricetracker/pkg/page"
)

// SiteRule maps a host pattern to an ordered selector list. Rules are data,
// not code: supporting a new storefront means adding an entry, not a branch.
type SiteRule struct {
	Host      string   // substring matched against the page host
	Selectors []string // tried in order, first parseable match wins
	Attr      string   // attribute holding the amount; empty means element text
}

// DefaultSiteRules covers large retailers whose structured data is often
// absent or stale. Selector lists are ordered most-specific first.
func DefaultSiteRules() []SiteRule {
	return []SiteRule{
		{
			Host: "amazon.",
			Selectors: []string{
				"#corePrice_feature_div span.a-offscreen",
				"span.a-price span.a-offscreen",
				"#priceblock_ourprice",
				"#priceblock_dealprice",
			},
		},
		{
			Host: "walmart.",
			Selectors: []string{
				`span[data-testid="price-wrap"] span[itemprop="price"]`,
				`[data-automation-id="product-price"]`,
				"span.price-characteristic",
			},
		},
		{
			Host: "bestbuy.",
			Selectors: []string{
				".priceView-customer-price > span",
				".priceView-hero-price span",
			},
		},
		{
			Host: "target.",
			Selectors: []string{
				`[data-test="product-price"]`,
				"span.h-text-bs",
			},
		},
		{
			Host: "homedepot.",
			Selectors: []string{
				".price-format__large",
				"#standard-price .price",
			},
		},
		{
			Host: "ebay.",
			Selectors: []string{
				".x-price-primary span.ux-textspans",
				"#prcIsum",
			},
		},
	}
}

// SiteStrategy applies host-specific extraction rules. Hosts without a rule
// fall through to the generic heuristic stage.
type SiteStrategy struct {
	rules  []SiteRule
	rng    AmountRange
	logger *logging.Logger
}

var _ Strategy = (*SiteStrategy)(nil)

// NewSiteStrategy creates the site-specific stage with the given registry.
func NewSiteStrategy(rules []SiteRule, rng AmountRange, logger *logging.Logger) *SiteStrategy {
	return &SiteStrategy{rules: rules, rng: rng, logger: logger}
}

// Name returns the stage name.
func (s *SiteStrategy) Name() string {
	return "sites"
}

// Extract finds the first rule matching the page host and tries its
// selectors in order.
func (s *SiteStrategy) Extract(snap *page.Snapshot) (*Result, error) {
	host := snap.Host()

	for _, rule := range s.rules {
		if !strings.Contains(host, strings.ToLower(rule.Host)) {
			continue
		}

		if res := s.applyRule(snap, rule); res != nil {
			return res, nil
		}

		s.logger.Debug("Site rule matched host but yielded no price",
			"host", host, "rule", rule.Host)
		break
	}

	return nil, ErrNoCandidate
}

// applyRule tries each selector of one rule; the first element producing a
// parseable in-range amount wins.
func (s *SiteStrategy) applyRule(snap *page.Snapshot, rule SiteRule) *Result {
	var result *Result

	for _, selector := range rule.Selectors {
		snap.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := sel.Text()
			if rule.Attr != "" {
				if v, ok := sel.Attr(rule.Attr); ok {
					text = v
				}
			}

			amount, err := ParseAmount(text, s.rng)
			if err != nil {
				// Site rules see bare amounts too (e.g. itemprop content)
				amount, err = ParseBareAmount(text)
			}
			if err != nil || !s.rng.Contains(amount) {
				return true
			}

			result = &Result{Price: amount, Node: sel}
			return false
		})

		if result != nil {
			return result
		}
	}

	return nil
}
