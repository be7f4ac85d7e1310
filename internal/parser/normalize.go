package parser

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/silpodev/silpo-scraper/internal/models"
)

// SiteOrigin is the canonical origin relative product URLs resolve against.
const SiteOrigin = "https://silpo.ua"

// Ordered key candidates per canonical field; first match wins.
var (
	titleKeys        = []string{"title", "name"}
	urlKeys          = []string{"url", "productUrl", "link"}
	priceCurrentKeys = []string{"price", "currentPrice", "priceCurrent", "salePrice"}
	nestedCurrent    = []string{"current", "sale", "value"}
	nestedOld        = []string{"old", "regular", "base"}
	discountKeys     = []string{"discount", "discountPct", "discountPercent"}
)

// NormalizeStructured maps a heterogeneous API product object onto the
// canonical row fields. It fills title, URLs, brand, pack and prices; run
// and page provenance stay with the caller. ok is false when the object
// has no usable title.
func NormalizeStructured(raw map[string]any) (row models.ProductRow, ok bool) {
	title := strings.TrimSpace(firstString(raw, titleKeys))
	if title == "" {
		return models.ProductRow{}, false
	}
	row.Title = title

	if u := firstString(raw, urlKeys); u != "" {
		row.ProductURL = ResolveURL(u)
	}
	if id, present := raw["id"]; present {
		row.ProductID = anyToString(id)
	}

	switch b := raw["brand"].(type) {
	case string:
		row.Brand = strings.TrimSpace(b)
	case map[string]any:
		row.Brand = strings.TrimSpace(firstString(b, []string{"name", "title"}))
	}
	if row.Brand == "" {
		row.Brand = ExtractBrand(title)
	}

	for _, k := range priceCurrentKeys {
		if v, present := raw[k]; present {
			if f := toNumber(v); f != nil {
				row.PriceCurrent = *f
				break
			}
		}
	}
	if row.PriceCurrent == 0 {
		if prices, isMap := raw["prices"].(map[string]any); isMap {
			for _, k := range nestedCurrent {
				if v, present := prices[k]; present {
					if f := toNumber(v); f != nil {
						row.PriceCurrent = *f
						break
					}
				}
			}
			for _, k := range nestedOld {
				if v, present := prices[k]; present {
					if f := toNumber(v); f != nil {
						row.PriceOld = f
						break
					}
				}
			}
		}
	}
	for _, k := range discountKeys {
		if v, present := raw[k]; present {
			if f := toNumber(v); f != nil {
				row.DiscountPct = f
				break
			}
		}
	}

	row.ProductType = ExtractProductType(title)
	row.FatPct = ExtractFatPct(title)
	row.Pack = ExtractPack(title)
	if row.PriceCurrent > 0 {
		row.PricePerUnit = ComputePricePerUnit(row.PriceCurrent, row.Pack)
	}

	if encoded, err := json.Marshal(raw); err == nil {
		row.RawJSON = string(encoded)
	}
	return row, true
}

// ResolveURL resolves a relative product path against the site origin.
func ResolveURL(u string) string {
	if strings.HasPrefix(u, "/") {
		return SiteOrigin + u
	}
	return u
}

func firstString(obj map[string]any, keys []string) string {
	for _, k := range keys {
		if s, isStr := obj[k].(string); isStr && s != "" {
			return s
		}
	}
	return ""
}

func toNumber(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return &f
		}
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", ".")
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return &f
		}
	}
	return nil
}

func anyToString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	}
	return ""
}
