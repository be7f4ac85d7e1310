// Package discovery captures a replayable API template for a category page
// by observing the outbound network calls of a headless browser session.
package discovery

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// EndpointSubstr identifies the category products call among all outbound
// requests made while the page loads.
const EndpointSubstr = "product-api.silpo.ua/api/v1/Product/GetCategoryProducts"

// settleWait bounds how long discovery waits for the page's own API call
// after DOM content is loaded.
const settleWait = 6 * time.Second

// DiscoveryError means no API template could be obtained. It is fatal to
// the run unless the static fallback template is enabled.
type DiscoveryError struct {
	Err error
}

func (e DiscoveryError) Error() string {
	return fmt.Errorf("discovery: %w", e.Err).Error()
}

func (e DiscoveryError) Unwrap() error {
	return e.Err
}

// Session is the browser capability discovery needs: a page to observe
// and the cookies the navigation produced.
type Session interface {
	NewPage(timeout time.Duration) (playwright.Page, error)
	Cookies() (map[string]string, error)
}

// Discoverer drives one browser navigation against the category page and
// extracts the request template of the backing API.
type Discoverer struct {
	browser     Session
	categoryURL string
	userAgent   string
	timeout     time.Duration
	cachePath   string
	useFallback bool
	logger      *slog.Logger
}

func New(b Session, categoryURL, userAgent string, timeout time.Duration, cachePath string, useFallback bool) *Discoverer {
	return &Discoverer{
		browser:     b,
		categoryURL: categoryURL,
		userAgent:   userAgent,
		timeout:     timeout,
		cachePath:   cachePath,
		useFallback: useFallback,
		logger:      slog.Default().With("component", "discovery"),
	}
}

// Discover returns the API template for the category. A cached template is
// trusted and returned without any network activity. Live discovery is a
// single attempt; on failure the static fallback template is returned when
// enabled, otherwise a DiscoveryError.
func (d *Discoverer) Discover() (*Template, error) {
	if tpl, hit := LoadCached(d.cachePath); hit {
		d.logger.Info("using cached api template", "path", d.cachePath, "endpoint", tpl.Endpoint)
		return tpl, nil
	}

	tpl, err := d.capture()
	if err != nil {
		if d.useFallback {
			d.logger.Warn("live discovery failed, using static fallback template", "error", err)
			return FallbackTemplate(d.categoryURL, d.userAgent), nil
		}
		return nil, DiscoveryError{Err: err}
	}

	if err := Save(d.cachePath, tpl); err != nil {
		return nil, DiscoveryError{Err: fmt.Errorf("persist template: %w", err)}
	}
	d.logger.Info("api template captured", "endpoint", tpl.Endpoint, "method", tpl.Method)
	return tpl, nil
}

func (d *Discoverer) capture() (*Template, error) {
	page, err := d.browser.NewPage(d.timeout)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	var (
		mu       sync.Mutex
		captured *Template
	)
	page.OnRequest(func(req playwright.Request) {
		if !strings.Contains(req.URL(), EndpointSubstr) {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if captured != nil {
			return
		}
		body := map[string]any{}
		if post, err := req.PostData(); err == nil && post != "" {
			if err := json.Unmarshal([]byte(post), &body); err != nil {
				body = map[string]any{}
			}
		}
		captured = &Template{
			Endpoint: req.URL(),
			Method:   req.Method(),
			Headers:  req.Headers(),
			Body:     body,
		}
	})

	if _, err := page.Goto(d.categoryURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(d.timeout.Milliseconds())),
	}); err != nil {
		return nil, fmt.Errorf("navigate to category: %w", err)
	}
	page.WaitForTimeout(float64(settleWait.Milliseconds()))

	cookies, err := d.browser.Cookies()
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	if captured == nil {
		return nil, fmt.Errorf("no %s call observed within %s", EndpointSubstr, settleWait)
	}

	captured.Headers = SanitizeHeaders(captured.Headers, d.categoryURL, d.userAgent, "https://silpo.ua")
	captured.Cookies = cookies
	return captured, nil
}

// FallbackTemplate is the static alternate-API template used when live
// discovery is unavailable. The body carries the page.number pagination
// shape the category API accepts.
func FallbackTemplate(categoryURL, userAgent string) *Template {
	return &Template{
		Endpoint: "https://" + EndpointSubstr,
		Method:   "POST",
		Headers: SanitizeHeaders(map[string]string{
			"accept":       "application/json, text/plain, */*",
			"content-type": "application/json",
		}, categoryURL, userAgent, "https://silpo.ua"),
		Cookies: map[string]string{},
		Body: map[string]any{
			"category": categorySlug(categoryURL),
			"page": map[string]any{
				"number": 1,
				"size":   32,
			},
		},
	}
}

func categorySlug(categoryURL string) string {
	slug := categoryURL
	if i := strings.IndexAny(slug, "?#"); i >= 0 {
		slug = slug[:i]
	}
	slug = strings.TrimRight(slug, "/")
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		slug = slug[i+1:]
	}
	return slug
}
