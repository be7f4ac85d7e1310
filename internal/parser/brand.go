package parser

import (
	"regexp"
	"strings"
)

var (
	quotedBrandPattern = regexp.MustCompile(`[«"]([^»"]+)[»"]`)
	leadingWordsRun    = regexp.MustCompile(`^\p{Lu}[\p{L}'’\-]*(?:\s+\p{Lu}[\p{L}'’\-]*)*`)
)

// ExtractBrand pulls a brand token from a title. A quoted brand
// («Простоквашино», "Ферма") wins; otherwise the leading run of
// capitalized words is used. Empty string when neither applies.
func ExtractBrand(title string) string {
	if m := quotedBrandPattern.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := leadingWordsRun.FindString(strings.TrimSpace(title)); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}

// Category keyword table for the dairy assortment. Order is the tie-break:
// the first category with a matching keyword wins.
var productTypes = []struct {
	name     string
	keywords []string
}{
	{"молоко", []string{"молоко"}},
	{"кефір", []string{"кефір", "кефир"}},
	{"йогурт", []string{"йогурт"}},
	{"сметана", []string{"сметана"}},
	{"вершки", []string{"вершки"}},
	{"масло", []string{"масло"}},
	{"сир кисломолочний", []string{"сир кисломолочний", "творог"}},
	{"сир", []string{"сир", "бринза", "моцарела", "фета"}},
	{"ряжанка", []string{"ряжанка"}},
	{"яйця", []string{"яйця", "яйце"}},
	{"десерт", []string{"десерт", "сирок", "пудинг"}},
	{"напій", []string{"напій", "коктейль"}},
}

// ExtractProductType classifies a title against the fixed keyword table.
func ExtractProductType(title string) string {
	t := strings.ToLower(title)
	for _, pt := range productTypes {
		for _, kw := range pt.keywords {
			if strings.Contains(t, kw) {
				return pt.name
			}
		}
	}
	return ""
}
