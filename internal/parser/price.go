package parser

import (
	"regexp"
	"strings"
)

var (
	pricePattern    = regexp.MustCompile(`(?i)(\d{1,4}(?:[.,]\d{2})?)\s*грн`)
	discountPattern = regexp.MustCompile(`-\s*(\d{1,2})\s*%`)
	fatPctPattern   = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*%`)
)

// Accepted price range; values outside are treated as parsing noise.
const (
	minPrice = 0.01
	maxPrice = 100000
)

// ParsePrices finds currency-tagged numeric tokens in order of appearance.
// The first is the current price, the second (if any) the old price. The
// discount percentage is parsed independently from a "-N%" pattern.
func ParsePrices(text string) (current, old, discountPct *float64) {
	var prices []float64
	for _, m := range pricePattern.FindAllStringSubmatch(text, -1) {
		v := parseDecimal(m[1])
		if v > minPrice && v < maxPrice {
			prices = append(prices, v)
		}
	}
	if len(prices) == 0 {
		return nil, nil, nil
	}
	current = &prices[0]
	if len(prices) > 1 {
		old = &prices[1]
	}
	if m := discountPattern.FindStringSubmatch(text); m != nil {
		d := parseDecimal(m[1])
		discountPct = &d
	}
	return current, old, discountPct
}

// ExtractFatPct returns the first "N%" or "N.N%" token from a title, with
// the decimal separator normalized to a dot. Empty string when absent.
func ExtractFatPct(title string) string {
	m := fatPctPattern.FindStringSubmatch(title)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], ",", ".") + "%"
}
