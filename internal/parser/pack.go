package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/silpodev/silpo-scraper/internal/models"
)

// Pack phrases as they appear in Silpo titles. Cyrillic units defeat \b in
// RE2, so the patterns close with an explicit non-letter-or-end group.
var (
	piecesPattern = regexp.MustCompile(`(\d{1,2})\s*шт`)
	litersPattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*л(?:\P{L}|$)`)
	gramsPattern  = regexp.MustCompile(`(\d{2,4})\s*(г|мл)(?:\P{L}|$)`)
	kilosPattern  = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*кг(?:\P{L}|$)`)
)

// ExtractPack parses the packaging quantity and unit from a product title.
// The cascade is tried in fixed priority: pieces, liters (normalized to
// milliliters), grams-or-milliliters, kilograms (normalized to grams).
// First match wins.
func ExtractPack(title string) models.Pack {
	t := strings.ToLower(title)

	if m := piecesPattern.FindStringSubmatch(t); m != nil {
		qty, _ := strconv.ParseFloat(m[1], 64)
		return models.Pack{Qty: models.Float(qty), Unit: models.String("шт")}
	}
	if m := litersPattern.FindStringSubmatch(t); m != nil {
		qty := parseDecimal(m[1])
		return models.Pack{Qty: models.Float(round3(qty * 1000)), Unit: models.String("мл")}
	}
	if m := gramsPattern.FindStringSubmatch(t); m != nil {
		qty, _ := strconv.ParseFloat(m[1], 64)
		return models.Pack{Qty: models.Float(qty), Unit: models.String(m[2])}
	}
	if m := kilosPattern.FindStringSubmatch(t); m != nil {
		qty := parseDecimal(m[1])
		return models.Pack{Qty: models.Float(round3(qty * 1000)), Unit: models.String("г")}
	}
	return models.Pack{}
}

// ComputePricePerUnit converts a package price into грн per piece, per
// kilogram or per liter depending on the pack unit. Returns nil when the
// quantity is missing or zero.
func ComputePricePerUnit(price float64, pack models.Pack) *float64 {
	if pack.Qty == nil || pack.Unit == nil || *pack.Qty == 0 {
		return nil
	}
	switch *pack.Unit {
	case "шт":
		return models.Float(round3(price / *pack.Qty))
	case "г", "мл":
		return models.Float(round3(price / (*pack.Qty / 1000)))
	}
	return nil
}

func parseDecimal(s string) float64 {
	v, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
