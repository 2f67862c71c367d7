package extractor

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/vikboyechko/pricetracker/pkg/logging"
	"github.com/vikboyechko/pricetracker/pkg/page"
)

// structuredSelector matches machine-readable price markup.
const structuredSelector = `[itemprop="price"], [data-product-price], [data-price]`

// StructuredStrategy reads machine-readable product markup: schema.org
// microdata attributes first, embedded JSON-LD second. Structured prices are
// authoritative; when present and positive they short-circuit every other
// stage.
type StructuredStrategy struct {
	logger *logging.Logger
}

var _ Strategy = (*StructuredStrategy)(nil)

// NewStructuredStrategy creates the structured data stage.
func NewStructuredStrategy(logger *logging.Logger) *StructuredStrategy {
	return &StructuredStrategy{logger: logger}
}

// Name returns the stage name.
func (s *StructuredStrategy) Name() string {
	return "structured"
}

// Extract looks for a schema.org price attribute or a JSON-LD price field.
func (s *StructuredStrategy) Extract(snap *page.Snapshot) (*Result, error) {
	if res := s.fromMicrodata(snap); res != nil {
		return res, nil
	}
	if res := s.fromJSONLD(snap); res != nil {
		return res, nil
	}
	return nil, ErrNoCandidate
}

// fromMicrodata scans price-bearing attributes. The content attribute wins
// over element text, matching how schema.org markup is usually written.
func (s *StructuredStrategy) fromMicrodata(snap *page.Snapshot) *Result {
	var result *Result

	snap.Find(structuredSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		texts := make([]string, 0, 4)
		for _, attr := range []string{"content", "data-price", "data-product-price", "value"} {
			if v, ok := sel.Attr(attr); ok {
				texts = append(texts, v)
			}
		}
		texts = append(texts, sel.Text())

		for _, text := range texts {
			amount, err := ParseBareAmount(text)
			if err != nil {
				continue
			}
			result = &Result{Price: amount, Node: sel}
			return false
		}
		return true
	})

	return result
}

// fromJSONLD walks embedded JSON-LD product blocks for a price or
// offers.price field. Malformed blocks are skipped, not fatal.
func (s *StructuredStrategy) fromJSONLD(snap *page.Snapshot) *Result {
	var result *Result

	snap.EachJSONLD(func(sel *goquery.Selection, raw string) {
		if result != nil {
			return
		}

		var doc interface{}
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			s.logger.Debug("Skipping malformed JSON-LD block", "error", err)
			return
		}

		if amount, ok := findJSONPrice(doc); ok {
			result = &Result{Price: amount, Node: sel}
		}
	})

	return result
}

// findJSONPrice searches a decoded JSON document for the first positive
// price field. Offers are preferred over a bare price on the same object
// since they describe the current selling price.
func findJSONPrice(v interface{}) (decimal.Decimal, bool) {
	switch node := v.(type) {
	case map[string]interface{}:
		if offers, ok := node["offers"]; ok {
			if amount, ok := findJSONPrice(offers); ok {
				return amount, true
			}
		}
		for _, key := range []string{"price", "lowPrice"} {
			if raw, ok := node[key]; ok {
				if amount, ok := coerceJSONPrice(raw); ok {
					return amount, true
				}
			}
		}
		if graph, ok := node["@graph"]; ok {
			if amount, ok := findJSONPrice(graph); ok {
				return amount, true
			}
		}
	case []interface{}:
		for _, item := range node {
			if amount, ok := findJSONPrice(item); ok {
				return amount, true
			}
		}
	}
	return decimal.Zero, false
}

// coerceJSONPrice handles the two spellings found in the wild: a JSON number
// or a numeric string.
func coerceJSONPrice(raw interface{}) (decimal.Decimal, bool) {
	switch val := raw.(type) {
	case float64:
		amount := decimal.NewFromFloat(val)
		if amount.IsPositive() {
			return amount, true
		}
	case string:
		if strings.TrimSpace(val) == "" {
			return decimal.Zero, false
		}
		if amount, err := ParseBareAmount(val); err == nil {
			return amount, true
		}
	}
	return decimal.Zero, false
}

// StructuredProductID returns a machine-readable product identifier (sku or
// productID markup) when the page carries one, or "" otherwise. Used to key
// price history more stably than the page URL.
func StructuredProductID(snap *page.Snapshot) string {
	for _, selector := range []string{`[itemprop="sku"]`, `[itemprop="productID"]`} {
		el := snap.Find(selector).First()
		if v, ok := el.Attr("content"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		if v := strings.TrimSpace(el.Text()); v != "" {
			return v
		}
	}

	var id string
	snap.EachJSONLD(func(_ *goquery.Selection, raw string) {
		if id != "" {
			return
		}
		var doc interface{}
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return
		}
		if v, ok := findJSONProductID(doc); ok {
			id = v
		}
	})
	return id
}

// findJSONProductID searches a decoded JSON-LD document for a sku or
// productID field on a Product object.
func findJSONProductID(v interface{}) (string, bool) {
	switch node := v.(type) {
	case map[string]interface{}:
		if t, ok := node["@type"].(string); ok && strings.EqualFold(t, "Product") {
			for _, key := range []string{"sku", "productID"} {
				if id, ok := node[key].(string); ok && strings.TrimSpace(id) != "" {
					return strings.TrimSpace(id), true
				}
			}
		}
		if graph, ok := node["@graph"]; ok {
			if id, ok := findJSONProductID(graph); ok {
				return id, true
			}
		}
	case []interface{}:
		for _, item := range node {
			if id, ok := findJSONProductID(item); ok {
				return id, true
			}
		}
	}
	return "", false
}

// findJSONName searches a decoded JSON-LD document for a product name.
func findJSONName(v interface{}) (string, bool) {
	switch node := v.(type) {
	case map[string]interface{}:
		if t, ok := node["@type"].(string); ok && strings.EqualFold(t, "Product") {
			if name, ok := node["name"].(string); ok && strings.TrimSpace(name) != "" {
				return strings.TrimSpace(name), true
			}
		}
		if graph, ok := node["@graph"]; ok {
			if name, ok := findJSONName(graph); ok {
				return name, true
			}
		}
	case []interface{}:
		for _, item := range node {
			if name, ok := findJSONName(item); ok {
				return name, true
			}
		}
	}
	return "", false
}
