package models

import (
	"time"
)

// Page and run statuses.
const (
	StatusRunning   = "RUNNING"
	StatusOK        = "OK"
	StatusZero      = "ZERO"
	StatusEmpty     = "EMPTY"
	StatusError     = "ERROR"
	StatusChallenge = "CHALLENGE"
)

// Extraction methods, in the order the strategy chain tries them.
const (
	MethodAPI  = "API"
	MethodHTML = "HTML"
	MethodDOM  = "DOM"
)

// MaxNoteLen bounds note strings stored on page logs and runs.
const MaxNoteLen = 500

// Pack is the packaging quantity and unit parsed from a product title.
// Unit is one of "шт", "г", "мл" when set.
type Pack struct {
	Qty  *float64 `json:"qty"`
	Unit *string  `json:"unit"`
}

func (p Pack) IsZero() bool {
	return p.Qty == nil && p.Unit == nil
}

// ProductRow is one observed product instance on one page of one run.
type ProductRow struct {
	RunID        string   `json:"run_id"`
	ObservedAt   string   `json:"observed_at"`
	PageNumber   int      `json:"page_number"`
	PageURL      string   `json:"page_url"`
	Source       string   `json:"source"`
	ProductID    string   `json:"product_id,omitempty"`
	ProductURL   string   `json:"product_url,omitempty"`
	Title        string   `json:"title"`
	Brand        string   `json:"brand,omitempty"`
	ProductType  string   `json:"product_type,omitempty"`
	FatPct       string   `json:"fat_pct,omitempty"`
	Pack         Pack     `json:"pack"`
	PriceCurrent float64  `json:"price_current"`
	PriceOld     *float64 `json:"price_old,omitempty"`
	DiscountPct  *float64 `json:"discount_pct,omitempty"`
	PricePerUnit *float64 `json:"price_per_unit,omitempty"`
	RawJSON      string   `json:"raw_json,omitempty"`
}

// PageLog is the outcome of one attempted page. Exactly one is recorded
// per page, even when the page fails.
type PageLog struct {
	RunID      string `json:"run_id"`
	PageNumber int    `json:"page_number"`
	PageURL    string `json:"page_url"`
	Method     string `json:"method"`
	Status     string `json:"status"`
	HTTPStatus *int   `json:"http_status,omitempty"`
	ItemsSeen  int    `json:"items_seen"`
	ItemsSaved int    `json:"items_saved"`
	Note       string `json:"note,omitempty"`
}

// Run is the ledger record for one invocation.
type Run struct {
	RunID       string     `json:"run_id"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	CategoryURL string     `json:"category_url"`
	MaxPages    int        `json:"max_pages"`
	Status      string     `json:"status"`
	Note        string     `json:"note,omitempty"`
}

// LogEvent is a structured trace entry attached to a run.
type LogEvent struct {
	TS      time.Time `json:"ts"`
	Level   string    `json:"level"`
	Event   string    `json:"event"`
	Message string    `json:"message"`
}

// RunResult is everything the orchestrator hands to the sinks.
type RunResult struct {
	Run      Run
	Rows     []ProductRow
	PageLogs []PageLog
	Events   []LogEvent
}

// Header is the fixed-order column header for row sinks.
func Header() []string {
	return []string{
		"observed_at",
		"page_number",
		"page_url",
		"source",
		"product_id",
		"product_url",
		"title",
		"brand",
		"product_type",
		"fat_pct",
		"pack_qty",
		"pack_unit",
		"price_current",
		"price_old",
		"discount_pct",
		"price_per_unit",
	}
}

// Record returns the row's values in Header order, formatted for sinks.
func (r ProductRow) Record() []string {
	return []string{
		r.ObservedAt,
		itoa(r.PageNumber),
		r.PageURL,
		r.Source,
		r.ProductID,
		r.ProductURL,
		r.Title,
		r.Brand,
		r.ProductType,
		r.FatPct,
		ftoa(r.Pack.Qty),
		strOrEmpty(r.Pack.Unit),
		ftoaV(r.PriceCurrent),
		ftoa(r.PriceOld),
		ftoa(r.DiscountPct),
		ftoa(r.PricePerUnit),
	}
}

// Truncate bounds a note string to MaxNoteLen characters. Notes carry
// Ukrainian text, so the cut is on runes, never mid-sequence.
func Truncate(s string) string {
	if len(s) <= MaxNoteLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= MaxNoteLen {
		return s
	}
	return string(runes[:MaxNoteLen])
}
