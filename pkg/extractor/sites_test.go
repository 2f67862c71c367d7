package extractor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vikboyechko/pricetracker/pkg/logging"
	"github.com/vikboyechko/pricetracker/pkg/page"
)

func newSiteStrategy(rules []SiteRule) *SiteStrategy {
	return NewSiteStrategy(rules, DefaultAmountRange(), logging.NewNoopLogger())
}

func TestSiteStrategy_SelectorOrder(t *testing.T) {
	rules := []SiteRule{{
		Host:      "example.",
		Selectors: []string{".primary-price", ".fallback-price"},
	}}

	snap, err := page.FromHTML(`<html><body>
		<span class="fallback-price">$20.00</span>
		<span class="primary-price">$10.00</span>
	</body></html>`, "https://www.example.com/p/1")
	require.NoError(t, err)

	res, err := newSiteStrategy(rules).Extract(snap)
	require.NoError(t, err)
	assert.True(t, res.Price.Equal(decimal.NewFromInt(10)), "got %s", res.Price)
}

func TestSiteStrategy_FallsToNextSelector(t *testing.T) {
	rules := []SiteRule{{
		Host:      "example.",
		Selectors: []string{".missing", ".fallback-price"},
	}}

	snap, err := page.FromHTML(`<html><body>
		<span class="fallback-price">$20.00</span>
	</body></html>`, "https://www.example.com/p/1")
	require.NoError(t, err)

	res, err := newSiteStrategy(rules).Extract(snap)
	require.NoError(t, err)
	assert.True(t, res.Price.Equal(decimal.NewFromInt(20)), "got %s", res.Price)
}

func TestSiteStrategy_AttrRule(t *testing.T) {
	rules := []SiteRule{{
		Host:      "example.",
		Selectors: []string{"meta.product-price"},
		Attr:      "content",
	}}

	snap, err := page.FromHTML(`<html><body>
		<meta class="product-price" content="55.25">
	</body></html>`, "https://www.example.com/p/1")
	require.NoError(t, err)

	res, err := newSiteStrategy(rules).Extract(snap)
	require.NoError(t, err)
	assert.True(t, res.Price.Equal(decimal.NewFromFloat(55.25)), "got %s", res.Price)
}

func TestSiteStrategy_UnknownHost(t *testing.T) {
	snap, err := page.FromHTML(`<html><body><span class="price">$9.99</span></body></html>`,
		"https://unknown-shop.test/p/1")
	require.NoError(t, err)

	_, err = newSiteStrategy(DefaultSiteRules()).Extract(snap)
	assert.ErrorIs(t, err, ErrNoCandidate)
}

func TestSiteStrategy_MatchedHostWithoutPrice(t *testing.T) {
	// A matched host whose selectors all miss yields no candidate; the
	// pipeline then falls through to the heuristic stage.
	snap, err := page.FromHTML(`<html><body><div>search results</div></body></html>`,
		"https://www.amazon.com/s?k=drill")
	require.NoError(t, err)

	_, err = newSiteStrategy(DefaultSiteRules()).Extract(snap)
	assert.ErrorIs(t, err, ErrNoCandidate)
}

func TestSiteStrategy_SkipsUnparseableElement(t *testing.T) {
	rules := []SiteRule{{
		Host:      "example.",
		Selectors: []string{".price"},
	}}

	snap, err := page.FromHTML(`<html><body>
		<span class="price">See cart</span>
		<span class="price">$31.50</span>
	</body></html>`, "https://www.example.com/p/1")
	require.NoError(t, err)

	res, err := newSiteStrategy(rules).Extract(snap)
	require.NoError(t, err)
	assert.True(t, res.Price.Equal(decimal.NewFromFloat(31.5)), "got %s", res.Price)
}
