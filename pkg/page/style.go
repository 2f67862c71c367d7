package page

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultFontSize is the browser default in pixels.
const DefaultFontSize = 16.0

// Browser default font sizes per tag, in pixels. Used when no inline
// font-size declaration is present on the element or its ancestors.
var tagFontSizes = map[string]float64{
	"h1":    32,
	"h2":    24,
	"h3":    18.72,
	"h4":    16,
	"h5":    13.28,
	"h6":    10.72,
	"small": 13.28,
	"sub":   13.28,
	"sup":   13.28,
	"big":   19.2,
}

// FontSize returns the effective font size of an element in pixels.
// Inline font-size declarations win, searched from the element upward;
// otherwise the tag default applies, searched the same way.
func (s *Snapshot) FontSize(sel *goquery.Selection) float64 {
	for cur := sel; cur.Length() > 0; cur = cur.Parent() {
		if style, ok := cur.Attr("style"); ok {
			if raw, ok := parseStyle(style)["font-size"]; ok {
				if px, ok := parseFontSize(raw); ok {
					return px
				}
			}
		}
	}
	for cur := sel; cur.Length() > 0; cur = cur.Parent() {
		if size, ok := tagFontSizes[goquery.NodeName(cur)]; ok {
			return size
		}
	}
	return DefaultFontSize
}

// parseStyle splits an inline style attribute into a declaration map.
// Malformed declarations are skipped.
func parseStyle(style string) map[string]string {
	decl := make(map[string]string)
	for _, part := range strings.Split(style, ";") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.ToLower(strings.TrimSpace(kv[1]))
		if key != "" && val != "" {
			decl[key] = val
		}
	}
	return decl
}

// parseFontSize converts a CSS font-size value to pixels.
// Supports px, pt, em and rem; relative units resolve against the default.
func parseFontSize(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)

	for _, unit := range []string{"px", "pt", "rem", "em"} {
		if !strings.HasSuffix(raw, unit) {
			continue
		}
		num := strings.TrimSpace(strings.TrimSuffix(raw, unit))
		val, err := strconv.ParseFloat(num, 64)
		if err != nil || val <= 0 {
			return 0, false
		}
		switch unit {
		case "pt":
			return val * 4.0 / 3.0, true
		case "em", "rem":
			return val * DefaultFontSize, true
		default:
			return val, true
		}
	}

	// Keyword sizes
	switch raw {
	case "xx-small":
		return 9, true
	case "x-small":
		return 10, true
	case "small":
		return 13, true
	case "medium":
		return DefaultFontSize, true
	case "large":
		return 18, true
	case "x-large":
		return 24, true
	case "xx-large":
		return 32, true
	}

	return 0, false
}
