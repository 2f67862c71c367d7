package page

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, html, rawurl string) *Snapshot {
	t.Helper()
	snap, err := FromHTML(html, rawurl)
	require.NoError(t, err)
	return snap
}

func TestSnapshot_Host(t *testing.T) {
	snap := mustParse(t, "<html><body></body></html>", "https://WWW.Example.COM/p/1?ref=x")
	assert.Equal(t, "www.example.com", snap.Host())
	assert.Equal(t, "/p/1", snap.URL().Path)
}

func TestSnapshot_Title(t *testing.T) {
	snap := mustParse(t, "<html><head><title>  Spaced Title  </title></head><body></body></html>", "https://example.com")
	assert.Equal(t, "Spaced Title", snap.Title())
}

func TestSnapshot_EachJSONLD(t *testing.T) {
	snap := mustParse(t, `<html><head>
		<script type="application/ld+json">{"a": 1}</script>
		<script type="text/javascript">var x = 1;</script>
		<script type="application/ld+json">   </script>
		<script type="application/ld+json">{"b": 2}</script>
	</head><body></body></html>`, "https://example.com")

	var blocks []string
	snap.EachJSONLD(func(_ *goquery.Selection, raw string) {
		blocks = append(blocks, raw)
	})

	// Non-JSON-LD scripts and empty blocks are skipped
	require.Len(t, blocks, 2)
	assert.Equal(t, `{"a": 1}`, blocks[0])
	assert.Equal(t, `{"b": 2}`, blocks[1])
}

func TestSnapshot_DocumentOffsetOrdering(t *testing.T) {
	snap := mustParse(t, `<html><body>
		<div id="first"><span id="inner">a</span></div>
		<div id="second">b</div>
	</body></html>`, "https://example.com")

	first := snap.Find("#first")
	inner := snap.Find("#inner")
	second := snap.Find("#second")

	assert.Less(t, snap.DocumentOffset(first), snap.DocumentOffset(inner))
	assert.Less(t, snap.DocumentOffset(inner), snap.DocumentOffset(second))
}

func TestSnapshot_IsVisible(t *testing.T) {
	snap := mustParse(t, `<html><body>
		<div id="plain">a</div>
		<div id="none" style="display: none">b</div>
		<div style="visibility: hidden"><span id="inherited">c</span></div>
		<div id="attr" hidden>d</div>
		<input id="hidden-input" type="hidden" value="x">
		<div id="styled" style="color: red">e</div>
	</body></html>`, "https://example.com")

	assert.True(t, snap.IsVisible(snap.Find("#plain")))
	assert.False(t, snap.IsVisible(snap.Find("#none")))
	assert.False(t, snap.IsVisible(snap.Find("#inherited")), "hidden ancestors hide descendants")
	assert.False(t, snap.IsVisible(snap.Find("#attr")))
	assert.False(t, snap.IsVisible(snap.Find("#hidden-input")))
	assert.True(t, snap.IsVisible(snap.Find("#styled")))
}

func TestFontSize(t *testing.T) {
	snap := mustParse(t, `<html><body>
		<span id="plain">a</span>
		<span id="px" style="font-size: 28px">b</span>
		<span id="pt" style="font-size: 12pt">c</span>
		<span id="em" style="font-size: 1.5em">d</span>
		<div style="font-size: 20px"><span id="inherit">e</span></div>
		<h1 id="h1">f</h1>
		<h1 id="h1-styled" style="font-size: 40px">g</h1>
		<span id="keyword" style="font-size: large">h</span>
		<span id="bogus" style="font-size: huge">i</span>
	</body></html>`, "https://example.com")

	assert.InDelta(t, 16, snap.FontSize(snap.Find("#plain")), 0.01)
	assert.InDelta(t, 28, snap.FontSize(snap.Find("#px")), 0.01)
	assert.InDelta(t, 16, snap.FontSize(snap.Find("#pt")), 0.01)
	assert.InDelta(t, 24, snap.FontSize(snap.Find("#em")), 0.01)
	assert.InDelta(t, 20, snap.FontSize(snap.Find("#inherit")), 0.01, "inline size inherits from ancestors")
	assert.InDelta(t, 32, snap.FontSize(snap.Find("#h1")), 0.01, "tag default applies without inline style")
	assert.InDelta(t, 40, snap.FontSize(snap.Find("#h1-styled")), 0.01, "inline style beats tag default")
	assert.InDelta(t, 18, snap.FontSize(snap.Find("#keyword")), 0.01)
	assert.InDelta(t, 16, snap.FontSize(snap.Find("#bogus")), 0.01, "unparseable sizes fall back to default")
}

func TestFromReader_InvalidURL(t *testing.T) {
	_, err := FromReader(strings.NewReader("<html></html>"), "://bad url")
	assert.ErrorIs(t, err, ErrInvalidLocation)
}
