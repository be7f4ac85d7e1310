// Package fetch implements the per-page extraction strategies, tried in
// priority order: API template replay, embedded page-state JSON, heuristic
// DOM scan.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/silpodev/silpo-scraper/internal/discovery"
	"github.com/silpodev/silpo-scraper/internal/parser"
)

// APIClient replays a captured API template with the page number
// substituted into the body.
type APIClient struct {
	template *discovery.Template
	client   *http.Client
	logger   *slog.Logger
}

// APIResult is the outcome of one API replay.
type APIResult struct {
	HTTPStatus int
	Products   []map[string]any
	Note       string
	RawBody    []byte
}

func NewAPIClient(template *discovery.Template, timeout time.Duration) *APIClient {
	return &APIClient{
		template: template,
		client:   &http.Client{Timeout: timeout},
		logger:   slog.Default().With("component", "api_client"),
	}
}

// FetchPage replays the template for one page and searches the response
// for product-shaped objects. Non-200 responses and JSON decode failures
// are strategy-level errors, not fatal to the run.
func (c *APIClient) FetchPage(ctx context.Context, pageNo int) (*APIResult, error) {
	body, err := WithPage(c.template.Body, pageNo)
	if err != nil {
		return nil, ParseError{Err: err}
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, ParseError{Err: fmt.Errorf("encode request body: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, c.template.Method, c.template.Endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, FetchError{Err: err}
	}
	for k, v := range c.template.Headers {
		req.Header.Set(k, v)
	}
	for name, value := range c.template.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, FetchError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, FetchError{Err: fmt.Errorf("read response: %w", err)}
	}

	result := &APIResult{HTTPStatus: resp.StatusCode, RawBody: raw, Note: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	if resp.StatusCode != http.StatusOK {
		// Anti-bot interstitials come back on the API endpoint as HTML
		// with a blocking status code.
		if parser.LooksLikeChallenge(string(raw), "") {
			result.Note = "challenge interstitial"
			return result, FetchError{Err: ErrChallenge}
		}
		return result, FetchError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		result.Note = "JSON decode failed"
		return result, ParseError{Err: err}
	}

	result.Products = parser.FindProducts(decoded, parser.DefaultWalkLimit)
	result.Note = fmt.Sprintf("products_found=%d", len(result.Products))
	c.logger.Debug("api page fetched", "page", pageNo, "status", resp.StatusCode, "products", len(result.Products))
	return result, nil
}

// Pagination key names checked at the top level of a template body.
var topLevelPageKeys = []string{"page", "Page", "pageNumber", "PageNumber"}

// WithPage returns an independent deep copy of the template body with the
// page number substituted. The stored body is never mutated, so repeated
// calls with the same page number are idempotent.
func WithPage(body map[string]any, pageNo int) (map[string]any, error) {
	copied, err := deepCopy(body)
	if err != nil {
		return nil, err
	}

	// Object-shaped pagination: {"page": {"number": N}}.
	if page, isMap := copied["page"].(map[string]any); isMap {
		if _, present := page["number"]; present {
			page["number"] = pageNo
			return copied, nil
		}
	}

	for _, k := range topLevelPageKeys {
		if isNumber(copied[k]) {
			copied[k] = pageNo
			return copied, nil
		}
	}

	if pagination, isMap := copied["pagination"].(map[string]any); isMap {
		substituted := false
		if _, present := pagination["page"]; present {
			pagination["page"] = pageNo
			substituted = true
		}
		if _, present := pagination["pageNumber"]; present {
			pagination["pageNumber"] = pageNo
			substituted = true
		}
		if substituted {
			return copied, nil
		}
	}

	// Offset/limit style: recompute offset from the stored page size.
	if isNumber(copied["offset"]) && isNumber(copied["limit"]) {
		limit := asInt(copied["limit"])
		if limit > 0 {
			copied["offset"] = (pageNo - 1) * limit
		}
		return copied, nil
	}

	return copied, nil
}

func deepCopy(body map[string]any) (map[string]any, error) {
	if body == nil {
		return map[string]any{}, nil
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("copy body: %w", err)
	}
	copied := map[string]any{}
	if err := json.Unmarshal(encoded, &copied); err != nil {
		return nil, fmt.Errorf("copy body: %w", err)
	}
	return copied, nil
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, int, json.Number:
		return true
	}
	return false
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return 0
}
