package extractor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vikboyechko/pricetracker/pkg/logging"
	"github.com/vikboyechko/pricetracker/pkg/page"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	return NewPipeline(logging.NewNoopLogger(), Options{})
}

func TestPipeline_StructuredWinsOverProminence(t *testing.T) {
	// The visually loudest amount is wrong; the microdata price is
	// authoritative and must short-circuit the heuristic stage.
	snap := mustSnapshot(t, `<html><body>
		<div><span style="font-size: 48px">$999.00</span></div>
		<span itemprop="price" content="123.45">$123.45</span>
	</body></html>`)

	res, err := newTestPipeline(t).ExtractPrice(snap)
	require.NoError(t, err)
	assert.True(t, res.Price.Equal(decimal.NewFromFloat(123.45)), "got %s", res.Price)
}

func TestPipeline_JSONLDPrice(t *testing.T) {
	snap := mustSnapshot(t, `<html><head>
		<script type="application/ld+json">
		{"@type": "Product", "name": "Cordless Drill", "offers": {"price": "89.00", "priceCurrency": "USD"}}
		</script>
	</head><body><div><span>$120.00</span></div></body></html>`)

	res, err := newTestPipeline(t).ExtractPrice(snap)
	require.NoError(t, err)
	assert.True(t, res.Price.Equal(decimal.NewFromInt(89)), "got %s", res.Price)
}

func TestPipeline_MalformedJSONLDFallsThrough(t *testing.T) {
	snap := mustSnapshot(t, `<html><head>
		<script type="application/ld+json">{not json at all</script>
	</head><body><div class="price"><span>$42.00</span></div></body></html>`)

	res, err := newTestPipeline(t).ExtractPrice(snap)
	require.NoError(t, err)
	assert.True(t, res.Price.Equal(decimal.NewFromInt(42)), "got %s", res.Price)
}

func TestPipeline_ZeroStructuredPriceFallsThrough(t *testing.T) {
	// A zero machine-readable price never wins; the pipeline keeps going.
	snap := mustSnapshot(t, `<html><body>
		<span itemprop="price" content="0"></span>
		<div class="price"><span>$15.00</span></div>
	</body></html>`)

	res, err := newTestPipeline(t).ExtractPrice(snap)
	require.NoError(t, err)
	assert.True(t, res.Price.Equal(decimal.NewFromInt(15)), "got %s", res.Price)
}

func TestPipeline_SiteRuleBeatsHeuristic(t *testing.T) {
	snap, err := page.FromHTML(`<html><body>
		<span class="a-price"><span class="a-offscreen">$34.99</span></span>
		<div><span style="font-size: 48px">$249.99</span></div>
	</body></html>`, "https://www.amazon.com/dp/B000000")
	require.NoError(t, err)

	res, err := newTestPipeline(t).ExtractPrice(snap)
	require.NoError(t, err)
	assert.True(t, res.Price.Equal(decimal.NewFromFloat(34.99)), "got %s", res.Price)
}

func TestPipeline_NoProductPage(t *testing.T) {
	snap := mustSnapshot(t, `<html><body><h1>About us</h1><p>We sell things.</p></body></html>`)

	_, err := newTestPipeline(t).ExtractPrice(snap)
	assert.ErrorIs(t, err, ErrNoCandidate)
}

func TestPipeline_CustomStageOrder(t *testing.T) {
	// A heuristic-only pipeline ignores structured data entirely.
	snap := mustSnapshot(t, `<html><body>
		<span itemprop="price" content="10.00"></span>
		<div class="price"><span>$25.00</span></div>
	</body></html>`)

	p := NewCustomPipeline(logging.NewNoopLogger(),
		NewHeuristicStrategy(DefaultHeuristics(), DefaultAmountRange(), logging.NewNoopLogger()))

	res, err := p.ExtractPrice(snap)
	require.NoError(t, err)
	assert.True(t, res.Price.Equal(decimal.NewFromInt(25)), "got %s", res.Price)
}

func TestStructuredProductID(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "microdata sku content attribute",
			html: `<html><body><meta itemprop="sku" content=" DRL-4400 "></body></html>`,
			want: "DRL-4400",
		},
		{
			name: "microdata sku element text",
			html: `<html><body><span itemprop="sku">B07XJ8C8F5</span></body></html>`,
			want: "B07XJ8C8F5",
		},
		{
			name: "sku wins over productID",
			html: `<html><body>
				<span itemprop="productID">isbn:123</span>
				<span itemprop="sku">SKU-1</span>
			</body></html>`,
			want: "SKU-1",
		},
		{
			name: "json-ld product sku",
			html: `<html><head><script type="application/ld+json">
				{"@type": "Product", "name": "Drill", "sku": "JL-77"}
			</script></head><body></body></html>`,
			want: "JL-77",
		},
		{
			name: "json-ld graph productID",
			html: `<html><head><script type="application/ld+json">
				{"@graph": [{"@type": "WebPage"}, {"@type": "Product", "productID": "pid-9"}]}
			</script></head><body></body></html>`,
			want: "pid-9",
		},
		{
			name: "non-product json-ld ignored",
			html: `<html><head><script type="application/ld+json">
				{"@type": "Organization", "sku": "not-a-product"}
			</script></head><body></body></html>`,
			want: "",
		},
		{
			name: "no markup",
			html: `<html><body><h1>Plain page</h1></body></html>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := mustSnapshot(t, tt.html)
			assert.Equal(t, tt.want, StructuredProductID(snap))
		})
	}
}
