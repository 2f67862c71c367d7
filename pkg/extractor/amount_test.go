package extractor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount_Basic(t *testing.T) {
	rng := DefaultAmountRange()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "$19.99", "19.99"},
		{"spaced", "$ 19.99", "19.99"},
		{"grouped", "$1,234.56", "1234.56"},
		{"integer", "$45", "45"},
		{"embedded", "Now only $7.50 today", "7.5"},
		{"trailing separator", "$12.", "12"},
		{"comma decimal", "$1.299,95", "1299.95"},
		{"multiple groups", "$12,345", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := ParseAmount(tt.text, rng)
			require.NoError(t, err)
			want, err := decimal.NewFromString(tt.want)
			require.NoError(t, err)
			assert.True(t, amount.Equal(want), "got %s want %s", amount, want)
		})
	}
}

func TestParseAmount_Rejections(t *testing.T) {
	rng := DefaultAmountRange()

	tests := []struct {
		name string
		text string
	}{
		{"no dollar mark", "19.99"},
		{"no digits", "price: $"},
		{"empty", ""},
		{"currency prefix", "CAD$5.00"},
		{"lowercase prefix", "usd$9.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAmount(tt.text, rng)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrAmountNotParseable)
		})
	}
}

func TestParseAmount_Range(t *testing.T) {
	rng := DefaultAmountRange()

	_, err := ParseAmount("$0.00", rng)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	_, err = ParseAmount("$100,001", rng)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	// Bounds are inclusive
	amount, err := ParseAmount("$0.01", rng)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromFloat(0.01)))

	amount, err = ParseAmount("$100,000", rng)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(100000)))
}

func TestParseAmount_SkipsCurrencyPrefixedMatch(t *testing.T) {
	// The first match is letter-prefixed and skipped; the second wins.
	amount, err := ParseAmount("CAD$5.00 or $4.25", DefaultAmountRange())
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromFloat(4.25)))

	// A space between the word and the mark is an ordinary sentence
	amount, err = ParseAmount("yours for $5.00", DefaultAmountRange())
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(5)))
}

func TestParseBareAmount(t *testing.T) {
	amount, err := ParseBareAmount("49.99")
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromFloat(49.99)))

	amount, err = ParseBareAmount(" $ 12.50 ")
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromFloat(12.5)))

	_, err = ParseBareAmount("")
	assert.ErrorIs(t, err, ErrAmountNotParseable)

	_, err = ParseBareAmount("0")
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	_, err = ParseBareAmount("free")
	assert.ErrorIs(t, err, ErrAmountNotParseable)
}
