package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pricewatch-it/pricewatch/internal/catalog"
)

// trailingSKU matches the "hyphen, optional spaces, digits" suffix the source
// site appends to product names, e.g. "Olive Verdi - 500".
var trailingSKU = regexp.MustCompile(`\s*-\s*\d+$`)

// CleanProductName strips a trailing SKU/size suffix from a display name.
func CleanProductName(name string) string {
	return trailingSKU.ReplaceAllString(name, "")
}

// TitleCase uppercases the first letter of every word and lowercases the rest,
// treating any non-letter as a word boundary ("coca-cola" -> "Coca-Cola").
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			b.WriteRune(r)
			prevLetter = false
		case prevLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToUpper(r))
			prevLetter = true
		}
	}
	return b.String()
}

// NormalizeProductName applies the full cleanup pipeline to a raw tile name.
func NormalizeProductName(raw string) string {
	return TitleCase(strings.TrimSpace(CleanProductName(strings.TrimSpace(raw))))
}

// ParsePrice converts displayed price text ("€ 2,49") into an amount. Text
// with no parseable number yields an absent Price rather than an error: a
// missing price is an expected data condition, filtered later.
func ParsePrice(text string) catalog.Price {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, "€", ""))
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return catalog.Price{}
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return catalog.Price{}
	}
	return catalog.PriceOf(amount)
}
