package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/silpodev/silpo-scraper/internal/models"
	"github.com/silpodev/silpo-scraper/internal/parser"
)

// Bounds for the heuristic DOM scan.
const (
	maxAnchorCandidates = 400
	maxCurrencyBlocks   = 800
	minCardTextLen      = 20
	maxTitleLen         = 250
	dedupeCacheSize     = 2048
)

// Link path fragments that mark an anchor as product-like.
var productPathMarkers = []string{"/product", "/tovar", "/goods"}

// currencyMarker is the site's price tag; blocks without it carry no
// price-bearing content worth scanning.
const currencyMarker = "грн"

// ExtractDOM is the last-resort strategy: scan rendered anchors whose link
// target looks like a product path, or, when none qualify, all text blocks
// containing the currency marker. Candidates without a parseable current
// price are discarded but still counted as seen.
func ExtractDOM(html string) (rows []models.ProductRow, seen int, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, 0, ParseError{Err: err}
	}

	dedupe, err := lru.New[string, struct{}](dedupeCacheSize)
	if err != nil {
		return nil, 0, err
	}

	rows, seen = scanProductAnchors(doc, dedupe)
	if len(rows) == 0 {
		blockRows, blockSeen := scanCurrencyBlocks(doc, dedupe)
		rows = blockRows
		seen += blockSeen
	}
	return rows, seen, nil
}

func scanProductAnchors(doc *goquery.Document, dedupe *lru.Cache[string, struct{}]) (rows []models.ProductRow, seen int) {
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !isProductPath(href) {
			return true
		}

		card := a.Closest("article, li, div")
		if card.Length() == 0 {
			card = a
		}
		text := strings.TrimSpace(card.Text())
		if len([]rune(text)) < minCardTextLen {
			return true
		}

		seen++
		if seen >= maxAnchorCandidates {
			return false
		}

		title := firstLine(text)
		key := parser.ResolveURL(href) + "|" + prefix(title, 80)
		if _, dup := dedupe.Get(key); dup {
			return true
		}
		dedupe.Add(key, struct{}{})

		if row, ok := candidateRow(title, parser.ResolveURL(href), text); ok {
			rows = append(rows, row)
		}
		return true
	})
	return rows, seen
}

func scanCurrencyBlocks(doc *goquery.Document, dedupe *lru.Cache[string, struct{}]) (rows []models.ProductRow, seen int) {
	doc.Find("div, li, article, p").EachWithBreak(func(_ int, block *goquery.Selection) bool {
		text := strings.TrimSpace(block.Text())
		if text == "" || !strings.Contains(strings.ToLower(text), currencyMarker) {
			return true
		}

		seen++
		if seen >= maxCurrencyBlocks {
			return false
		}

		title := firstLine(text)
		if _, dup := dedupe.Get(title); dup {
			return true
		}
		dedupe.Add(title, struct{}{})

		if row, ok := candidateRow(title, "", text); ok {
			rows = append(rows, row)
		}
		return true
	})
	return rows, seen
}

// candidateRow builds a row from scraped text. Provenance fields stay with
// the orchestrator.
func candidateRow(title, productURL, text string) (models.ProductRow, bool) {
	current, old, discount := parser.ParsePrices(text)
	if current == nil || title == "" {
		return models.ProductRow{}, false
	}

	row := models.ProductRow{
		Title:        title,
		ProductURL:   productURL,
		Brand:        parser.ExtractBrand(title),
		ProductType:  parser.ExtractProductType(title),
		FatPct:       parser.ExtractFatPct(title),
		Pack:         parser.ExtractPack(title),
		PriceCurrent: *current,
		PriceOld:     old,
		DiscountPct:  discount,
	}
	row.PricePerUnit = parser.ComputePricePerUnit(row.PriceCurrent, row.Pack)
	return row, true
}

func isProductPath(href string) bool {
	for _, marker := range productPathMarkers {
		if strings.Contains(href, marker) {
			return true
		}
	}
	return false
}

func firstLine(text string) string {
	line := text
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return prefix(strings.TrimSpace(line), maxTitleLen)
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
