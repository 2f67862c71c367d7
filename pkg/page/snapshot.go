// Package page provides a queryable snapshot of a product page's document tree.
package page

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Snapshot wraps a parsed document together with its location.
// It is the extractor's read-only view of a page: selection, structured-data
// blocks, and the static layout signals (font size, offset, visibility) that
// stand in for rendered geometry.
type Snapshot struct {
	doc *goquery.Document
	url *url.URL

	// document-order offsets, built lazily on first DocumentOffset call
	offsets map[*html.Node]int
}

// FromReader parses a page from a reader. rawurl is the page's location and
// is used for host matching and product-key derivation.
func FromReader(r io.Reader, rawurl string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseableDocument, err)
	}

	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLocation, rawurl)
	}

	return &Snapshot{doc: doc, url: u}, nil
}

// FromHTML parses a page from an HTML string.
func FromHTML(content, rawurl string) (*Snapshot, error) {
	return FromReader(strings.NewReader(content), rawurl)
}

// URL returns the page's location.
func (s *Snapshot) URL() *url.URL {
	return s.url
}

// Host returns the page's hostname, lowercased.
func (s *Snapshot) Host() string {
	return strings.ToLower(s.url.Hostname())
}

// Find runs a selector against the document.
func (s *Snapshot) Find(selector string) *goquery.Selection {
	return s.doc.Find(selector)
}

// Title returns the document title, trimmed.
func (s *Snapshot) Title() string {
	return strings.TrimSpace(s.doc.Find("title").First().Text())
}

// EachJSONLD iterates over embedded JSON-LD script blocks.
func (s *Snapshot) EachJSONLD(fn func(sel *goquery.Selection, raw string)) {
	s.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		if raw := strings.TrimSpace(sel.Text()); raw != "" {
			fn(sel, raw)
		}
	})
}

// DocumentOffset returns the position of the selection's first node in
// document order. Smaller offsets are closer to the top of the page; the
// extractor uses this as its tie-break.
func (s *Snapshot) DocumentOffset(sel *goquery.Selection) int {
	if len(sel.Nodes) == 0 {
		return 0
	}
	if s.offsets == nil {
		s.offsets = make(map[*html.Node]int)
		pos := 0
		var walk func(n *html.Node)
		walk = func(n *html.Node) {
			if n.Type == html.ElementNode {
				s.offsets[n] = pos
				pos++
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
		for _, root := range s.doc.Nodes {
			walk(root)
		}
	}
	return s.offsets[sel.Nodes[0]]
}

// IsVisible reports whether an element participates in layout: neither it nor
// any ancestor is hidden via inline style or the hidden attribute.
func (s *Snapshot) IsVisible(sel *goquery.Selection) bool {
	for cur := sel; cur.Length() > 0; cur = cur.Parent() {
		if _, hidden := cur.Attr("hidden"); hidden {
			return false
		}
		if style, ok := cur.Attr("style"); ok {
			decl := parseStyle(style)
			if decl["display"] == "none" || decl["visibility"] == "hidden" {
				return false
			}
		}
		if goquery.NodeName(cur) == "input" {
			if t, _ := cur.Attr("type"); strings.EqualFold(t, "hidden") {
				return false
			}
		}
	}
	return true
}
