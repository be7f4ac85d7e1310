// Package scraper drives one run: pages 1..max_pages through the strategy
// chain, aggregating normalized rows and per-page outcome logs.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/silpodev/silpo-scraper/internal/browser"
	"github.com/silpodev/silpo-scraper/internal/debug"
	"github.com/silpodev/silpo-scraper/internal/fetch"
	"github.com/silpodev/silpo-scraper/internal/models"
	"github.com/silpodev/silpo-scraper/internal/parser"
	"github.com/silpodev/silpo-scraper/internal/ratelimit"
)

// APISource replays the captured API template for one page.
type APISource interface {
	FetchPage(ctx context.Context, pageNo int) (*fetch.APIResult, error)
}

// PageRenderer produces the rendered HTML of one browser navigation, used
// by the embedded-state and DOM strategies.
type PageRenderer interface {
	Render(url string, timeout time.Duration) (*browser.RenderedPage, error)
}

type Options struct {
	CategoryURL     string
	MaxPages        int
	Timeout         time.Duration
	UseHTMLFallback bool
}

type Scraper struct {
	opts     Options
	api      APISource
	renderer PageRenderer
	limiter  ratelimit.RateLimiter
	recorder *Recorder
	metrics  *Metrics
	debug    *debug.Writer
	logger   *slog.Logger
}

func New(opts Options, api APISource, renderer PageRenderer, limiter ratelimit.RateLimiter, metrics *Metrics, dbg *debug.Writer, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "scraper")
	return &Scraper{
		opts:     opts,
		api:      api,
		renderer: renderer,
		limiter:  limiter,
		recorder: NewRecorder(logger),
		metrics:  metrics,
		debug:    dbg,
		logger:   logger,
	}
}

// Run processes pages 1..MaxPages sequentially. Per-page failures are
// recorded in page logs and never abort the run; only a detected challenge
// halts the remaining pagination. The returned result always carries a
// terminal run status.
func (s *Scraper) Run(ctx context.Context, runID string) (*models.RunResult, error) {
	started := time.Now().UTC()
	observedAt := started.Format(time.RFC3339)

	result := &models.RunResult{
		Run: models.Run{
			RunID:       runID,
			StartedAt:   started,
			CategoryURL: s.opts.CategoryURL,
			MaxPages:    s.opts.MaxPages,
			Status:      models.StatusRunning,
		},
	}

	s.recorder.Info("scrape_start", fmt.Sprintf("run_id=%s pages=%d url=%s", runID, s.opts.MaxPages, s.opts.CategoryURL))

	for pageNo := 1; pageNo <= s.opts.MaxPages; pageNo++ {
		if pageNo > 1 && s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				s.recorder.Warn("run_cancelled", fmt.Sprintf("page=%d error=%v", pageNo, err))
				break
			}
		}

		pageLog, rows := s.scrapePage(ctx, runID, observedAt, pageNo)
		result.Rows = append(result.Rows, rows...)
		result.PageLogs = append(result.PageLogs, pageLog)

		s.metrics.IncPage(pageLog.Status)
		s.metrics.AddItems(pageLog.ItemsSeen, pageLog.ItemsSaved)
		s.recorder.Info("page_done", fmt.Sprintf("page=%d status=%s saved=%d note=%s",
			pageNo, pageLog.Status, pageLog.ItemsSaved, pageLog.Note))

		if pageLog.Status == models.StatusChallenge {
			s.recorder.Warn("challenge_halt", fmt.Sprintf("page=%d remaining pages skipped", pageNo))
			break
		}
	}

	finished := time.Now().UTC()
	result.Run.FinishedAt = &finished
	if len(result.Rows) > 0 {
		result.Run.Status = models.StatusOK
	} else {
		result.Run.Status = models.StatusZero
		result.Run.Note = models.Truncate("zero rows saved (possible block/challenge or empty extraction)")
	}

	s.metrics.ObserveRun(finished.Sub(started))
	s.recorder.Info("scrape_finish", fmt.Sprintf("run_id=%s status=%s rows=%d pages=%d",
		runID, result.Run.Status, len(result.Rows), len(result.PageLogs)))

	result.Events = s.recorder.Events()
	return result, nil
}

// scrapePage walks the strategy chain for one page and always returns
// exactly one page log.
func (s *Scraper) scrapePage(ctx context.Context, runID, observedAt string, pageNo int) (models.PageLog, []models.ProductRow) {
	url := s.pageURL(pageNo)
	pageLog := models.PageLog{
		RunID:      runID,
		PageNumber: pageNo,
		PageURL:    url,
		Method:     models.MethodAPI,
		Status:     models.StatusOK,
	}

	s.recorder.Info("page_start", fmt.Sprintf("page=%d url=%s", pageNo, url))

	var rows []models.ProductRow

	// 1) API replay.
	var candidates []map[string]any
	if s.api != nil {
		s.metrics.IncStrategy(models.MethodAPI)
		apiRes, err := s.api.FetchPage(ctx, pageNo)
		if apiRes != nil {
			status := apiRes.HTTPStatus
			pageLog.HTTPStatus = &status
			pageLog.Note = models.Truncate(apiRes.Note)
		}
		if errors.Is(err, fetch.ErrChallenge) {
			pageLog.Status = models.StatusChallenge
			pageLog.Note = "challenge_detected_on_api"
			s.recorder.Warn("challenge", fmt.Sprintf("page=%d url=%s", pageNo, url))
			return pageLog, nil
		}
		if err != nil {
			pageLog.Status = models.StatusError
			pageLog.Note = models.Truncate(fmt.Sprintf("api_error=%v", err))
			s.recorder.Warn("api_error", fmt.Sprintf("page=%d error=%v", pageNo, err))
		} else {
			candidates = apiRes.Products
			s.debug.DumpAPIResponse(runID, pageNo, apiRes.RawBody)
		}
	}
	pageLog.ItemsSeen += len(candidates)
	rows = append(rows, s.normalizeCandidates(candidates, runID, observedAt, pageNo, url, models.MethodAPI)...)

	// 2) HTML strategies when the API produced nothing.
	if len(candidates) == 0 && s.opts.UseHTMLFallback && s.renderer != nil {
		htmlRows, challenge := s.scrapeHTML(runID, observedAt, pageNo, url, &pageLog)
		if challenge {
			pageLog.Status = models.StatusChallenge
			pageLog.Note = "challenge_detected_on_html"
			return pageLog, nil
		}
		rows = append(rows, htmlRows...)
	}

	pageLog.ItemsSaved = len(rows)
	if pageLog.ItemsSaved > 0 {
		// A later strategy rescuing the page overrides an earlier failure.
		pageLog.Status = models.StatusOK
	} else if pageLog.Status == models.StatusOK {
		pageLog.Status = models.StatusEmpty
		if pageLog.Note == "" {
			pageLog.Note = "zero_items"
		}
	}
	return pageLog, rows
}

// scrapeHTML renders the page once and tries embedded page state, then the
// DOM heuristic scan.
func (s *Scraper) scrapeHTML(runID, observedAt string, pageNo int, url string, pageLog *models.PageLog) (rows []models.ProductRow, challenge bool) {
	pageLog.Method = models.MethodHTML
	s.metrics.IncStrategy(models.MethodHTML)

	rendered, err := s.renderer.Render(url, s.opts.Timeout)
	if err != nil {
		pageLog.Status = models.StatusError
		pageLog.Note = models.Truncate(fmt.Sprintf("html_error=%v", err))
		s.recorder.Warn("html_error", fmt.Sprintf("page=%d error=%v", pageNo, err))
		return nil, false
	}

	if parser.LooksLikeChallenge(rendered.HTML, rendered.Title) {
		s.recorder.Warn("challenge", fmt.Sprintf("page=%d url=%s", pageNo, url))
		s.debug.SnapshotHTML(runID, pageNo, rendered.HTML)
		return nil, true
	}

	embedded, err := fetch.ExtractEmbeddedState(rendered.HTML)
	if err != nil {
		s.recorder.Warn("embedded_state_error", fmt.Sprintf("page=%d error=%v", pageNo, err))
	}
	if len(embedded) > 0 {
		pageLog.ItemsSeen += len(embedded)
		return s.normalizeCandidates(embedded, runID, observedAt, pageNo, url, models.MethodHTML), false
	}

	pageLog.Method = models.MethodDOM
	s.metrics.IncStrategy(models.MethodDOM)
	domRows, seen, err := fetch.ExtractDOM(rendered.HTML)
	if err != nil {
		pageLog.Status = models.StatusError
		pageLog.Note = models.Truncate(fmt.Sprintf("dom_error=%v", err))
		s.recorder.Warn("dom_error", fmt.Sprintf("page=%d error=%v", pageNo, err))
		return nil, false
	}
	pageLog.ItemsSeen += seen
	for i := range domRows {
		s.stampRow(&domRows[i], runID, observedAt, pageNo, url, models.MethodDOM)
	}
	return domRows, false
}

// normalizeCandidates maps product-shaped objects onto rows, silently
// dropping candidates without a usable title or price.
func (s *Scraper) normalizeCandidates(candidates []map[string]any, runID, observedAt string, pageNo int, url, method string) []models.ProductRow {
	var rows []models.ProductRow
	for _, candidate := range candidates {
		row, ok := parser.NormalizeStructured(candidate)
		if !ok || row.PriceCurrent <= 0 {
			continue
		}
		s.stampRow(&row, runID, observedAt, pageNo, url, method)
		rows = append(rows, row)
	}
	return rows
}

func (s *Scraper) stampRow(row *models.ProductRow, runID, observedAt string, pageNo int, url, method string) {
	row.RunID = runID
	row.ObservedAt = observedAt
	row.PageNumber = pageNo
	row.PageURL = url
	row.Source = method
}

// pageURL constructs the page URL deterministically: the category URL for
// page 1, category_url?page=N otherwise.
func (s *Scraper) pageURL(pageNo int) string {
	if pageNo == 1 {
		return s.opts.CategoryURL
	}
	return fmt.Sprintf("%s?page=%d", s.opts.CategoryURL, pageNo)
}
