package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the run orchestrator.
type Metrics struct {
	Registry        *prometheus.Registry
	PagesTotal      *prometheus.CounterVec
	ItemsSeenTotal  prometheus.Counter
	ItemsSavedTotal prometheus.Counter
	StrategyTotal   *prometheus.CounterVec
	RunDuration     prometheus.Histogram
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_pages_total",
			Help: "Pages processed, by terminal page status.",
		},
		[]string{"status"},
	)
	itemsSeen := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_items_seen_total",
			Help: "Product candidates found across all strategies.",
		},
	)
	itemsSaved := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_items_saved_total",
			Help: "Rows accepted after normalization and price validation.",
		},
	)
	strategies := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_strategy_attempts_total",
			Help: "Extraction strategy attempts, by method.",
		},
		[]string{"method"},
	)
	runDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_run_duration_seconds",
			Help:    "Wall-clock duration of whole runs.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	registry.MustRegister(pages, itemsSeen, itemsSaved, strategies, runDuration)

	return &Metrics{
		Registry:        registry,
		PagesTotal:      pages,
		ItemsSeenTotal:  itemsSeen,
		ItemsSavedTotal: itemsSaved,
		StrategyTotal:   strategies,
		RunDuration:     runDuration,
	}
}

func (m *Metrics) IncPage(status string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) AddItems(seen, saved int) {
	if m == nil {
		return
	}
	m.ItemsSeenTotal.Add(float64(seen))
	m.ItemsSavedTotal.Add(float64(saved))
}

func (m *Metrics) IncStrategy(method string) {
	if m == nil {
		return
	}
	m.StrategyTotal.WithLabelValues(method).Inc()
}

func (m *Metrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(d.Seconds())
}
