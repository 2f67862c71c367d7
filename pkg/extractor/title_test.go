package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTitle_FallbackChain(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"microdata name wins",
			`<html><head><title>Shop - Item</title></head><body>
				<span itemprop="name">Stand Mixer</span><h1>Kitchen</h1></body></html>`,
			"Stand Mixer",
		},
		{
			"json-ld product name",
			`<html><head><script type="application/ld+json">
				{"@type": "Product", "name": "Robot Vacuum"}
			</script><title>ignored</title></head><body></body></html>`,
			"Robot Vacuum",
		},
		{
			"h1 before og:title",
			`<html><head><meta property="og:title" content="Meta Name"></head>
				<body><h1>Heading Name</h1></body></html>`,
			"Heading Name",
		},
		{
			"og:title before document title",
			`<html><head><meta property="og:title" content="Graph Name"><title>Doc Title</title></head>
				<body></body></html>`,
			"Graph Name",
		},
		{
			"document title last",
			`<html><head><title>Plain Title</title></head><body></body></html>`,
			"Plain Title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := mustSnapshot(t, tt.html)
			title, err := ResolveTitle(snap)
			require.NoError(t, err)
			assert.Equal(t, tt.want, title)
		})
	}
}

func TestResolveTitle_StripsBoilerplate(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"storefront prefix",
			`<html><head><title>Amazon.com: Ceramic Mug Set</title></head><body></body></html>`,
			"Ceramic Mug Set",
		},
		{
			"pipe suffix",
			`<html><head><title>Ceramic Mug Set | MegaShop</title></head><body></body></html>`,
			"Ceramic Mug Set",
		},
		{
			"leading separator left intact",
			`<html><head><title> - MegaShop</title></head><body></body></html>`,
			"- MegaShop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := mustSnapshot(t, tt.html)
			title, err := ResolveTitle(snap)
			require.NoError(t, err)
			assert.Equal(t, tt.want, title)
		})
	}
}

func TestResolveTitle_NoSources(t *testing.T) {
	snap := mustSnapshot(t, `<html><head></head><body></body></html>`)
	_, err := ResolveTitle(snap)
	assert.ErrorIs(t, err, ErrNoTitle)
}
