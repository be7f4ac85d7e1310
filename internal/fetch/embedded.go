package fetch

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/silpodev/silpo-scraper/internal/parser"
)

// nextDataSelector matches the embedded page-state payload of
// server-rendered pages.
const nextDataSelector = `script#__NEXT_DATA__`

// ExtractEmbeddedState pulls the embedded JSON page state out of rendered
// HTML and runs the product-shaped-object search over it. A page without
// the marker yields no candidates and no error; a marker with malformed
// JSON is a ParseError.
func ExtractEmbeddedState(html string) ([]map[string]any, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, ParseError{Err: err}
	}

	payload := strings.TrimSpace(doc.Find(nextDataSelector).First().Text())
	if payload == "" {
		return nil, nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return nil, ParseError{Err: err}
	}

	return parser.FindProducts(decoded, parser.DefaultWalkLimit), nil
}
