package extractor

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vikboyechko/pricetracker/pkg/page"
)

// Storefront boilerplate stripped from resolved titles. The prefix form is
// the "Amazon.com: Product" pattern; the suffix form is "Product | Store".
var (
	boilerplatePrefix = regexp.MustCompile(`(?i)^(amazon\.com|walmart\.com|ebay)\s*:\s*`)
	boilerplateSuffix = regexp.MustCompile(`\s+[|\x{2022}-]\s+[^|\x{2022}]{1,60}$`)
)

// ResolveTitle returns the product title using an ordered fallback chain:
// structured data name, first h1, og:title, title meta, document title.
// Returns ErrNoTitle only when every source is empty after trimming.
func ResolveTitle(snap *page.Snapshot) (string, error) {
	if title := structuredName(snap); title != "" {
		return stripBoilerplate(title), nil
	}

	if title := strings.TrimSpace(snap.Find("h1").First().Text()); title != "" {
		return stripBoilerplate(title), nil
	}

	for _, sel := range []string{`meta[property="og:title"]`, `meta[name="title"]`} {
		if content, ok := snap.Find(sel).First().Attr("content"); ok {
			if title := strings.TrimSpace(content); title != "" {
				return stripBoilerplate(title), nil
			}
		}
	}

	if title := snap.Title(); title != "" {
		return stripBoilerplate(title), nil
	}

	return "", ErrNoTitle
}

// structuredName reads the product name from microdata or JSON-LD.
func structuredName(snap *page.Snapshot) string {
	if name := strings.TrimSpace(snap.Find(`[itemprop="name"]`).First().Text()); name != "" {
		return name
	}

	var found string
	snap.EachJSONLD(func(_ *goquery.Selection, raw string) {
		if found != "" {
			return
		}
		var doc interface{}
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return
		}
		if name, ok := findJSONName(doc); ok {
			found = name
		}
	})
	return found
}

// stripBoilerplate removes a known storefront prefix or a trailing
// "| Storefront" style suffix. Suffix stripping never empties the title.
func stripBoilerplate(title string) string {
	title = boilerplatePrefix.ReplaceAllString(title, "")

	if stripped := boilerplateSuffix.ReplaceAllString(title, ""); strings.TrimSpace(stripped) != "" {
		title = stripped
	}

	return strings.TrimSpace(title)
}
