package extractor

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// amountPattern matches a dollar mark followed by digits with optional
// grouping separators, e.g. "$1,234.56" or "$ 19.99".
var amountPattern = regexp.MustCompile(`\$\s*([0-9][0-9.,]*)`)

// ParseAmount extracts the first dollar amount from text and validates it
// against the range. A match whose dollar mark directly trails a letter (as
// in "CAD$5") is skipped so currency-prefixed amounts are not misread.
func ParseAmount(text string, rng AmountRange) (decimal.Decimal, error) {
	for _, loc := range amountPattern.FindAllStringSubmatchIndex(text, -1) {
		if letterPrecedes(text, loc[0]) {
			continue
		}

		amount, err := parseNumeric(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}

		if !rng.Contains(amount) {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrAmountOutOfRange, amount.String())
		}
		return amount, nil
	}

	return decimal.Zero, fmt.Errorf("%w: %q", ErrAmountNotParseable, truncate(text, 60))
}

// ParseBareAmount parses a standalone numeric amount, as found in structured
// data attributes ("49.99") or JSON price fields. A leading currency mark is
// tolerated. Only positivity is required; the heuristic band does not apply
// to machine-readable prices.
func ParseBareAmount(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "$"))
	if text == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrAmountNotParseable)
	}

	amount, err := parseNumeric(text)
	if err != nil {
		return decimal.Zero, err
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrAmountOutOfRange, amount.String())
	}
	return amount, nil
}

// parseNumeric normalizes grouping and fractional separators and parses the
// result as a decimal. The last separator followed by at most two digits is
// the fractional separator; every other separator is grouping and is dropped.
func parseNumeric(raw string) (decimal.Decimal, error) {
	lastSep := strings.LastIndexAny(raw, ".,")

	var normalized string
	if lastSep >= 0 && len(raw)-lastSep-1 <= 2 {
		intPart := strings.Map(dropSeparators, raw[:lastSep])
		if frac := raw[lastSep+1:]; frac != "" {
			normalized = intPart + "." + frac
		} else {
			normalized = intPart
		}
	} else {
		normalized = strings.Map(dropSeparators, raw)
	}

	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrAmountNotParseable, raw)
	}
	return amount, nil
}

func dropSeparators(r rune) rune {
	if r == '.' || r == ',' {
		return -1
	}
	return r
}

// letterPrecedes reports whether the character immediately before pos is a
// letter. Only the adjacent character counts: "CAD$5" is a currency prefix,
// "only $5" is not.
func letterPrecedes(text string, pos int) bool {
	if pos == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:pos])
	return unicode.IsLetter(r)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
