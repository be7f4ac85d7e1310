package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/silpodev/silpo-scraper/internal/api"
	"github.com/silpodev/silpo-scraper/internal/browser"
	"github.com/silpodev/silpo-scraper/internal/config"
	"github.com/silpodev/silpo-scraper/internal/database"
	"github.com/silpodev/silpo-scraper/internal/debug"
	"github.com/silpodev/silpo-scraper/internal/discovery"
	"github.com/silpodev/silpo-scraper/internal/fetch"
	"github.com/silpodev/silpo-scraper/internal/models"
	"github.com/silpodev/silpo-scraper/internal/pipeline"
	"github.com/silpodev/silpo-scraper/internal/ratelimit"
	"github.com/silpodev/silpo-scraper/internal/scraper"
	"github.com/silpodev/silpo-scraper/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.Scraper.CategoryURL, "url", cfg.Scraper.CategoryURL, "category page URL")
	flag.IntVar(&cfg.Scraper.MaxPages, "pages", cfg.Scraper.MaxPages, "maximum pages to scrape")
	flag.BoolVar(&cfg.Scraper.UseHTMLFallback, "html-fallback", cfg.Scraper.UseHTMLFallback, "render pages in a browser when the API yields nothing")
	flag.BoolVar(&cfg.Scraper.UseAltAPI, "alt-api", cfg.Scraper.UseAltAPI, "skip discovery and use the static API template")
	flag.Parse()

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	runID := uuid.New().String()
	log.Info("starting run", "run_id", runID, "url", cfg.Scraper.CategoryURL, "max_pages", cfg.Scraper.MaxPages)

	metrics := scraper.NewMetrics()
	if cfg.Server.MetricsAddr != "" {
		srv := api.NewServer(cfg.Server.MetricsAddr, metrics.Registry, log)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn("metrics shutdown failed", "error", err)
			}
		}()
	}

	var db *database.DB
	if cfg.Database.URL != "" {
		var err error
		db, err = database.New(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.InitSchema(ctx); err != nil {
			return err
		}
	}

	browserOpts := browser.DefaultOptions()
	browserOpts.Headless = cfg.Browser.Headless
	browserOpts.Timeout = cfg.Browser.Timeout
	browserOpts.UserAgent = cfg.Scraper.UserAgent
	browserOpts.Locale = cfg.Browser.Locale
	browserOpts.TimezoneID = cfg.Browser.TimezoneID

	b, err := browser.New(browserOpts)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Warn("browser close failed", "error", err)
		}
	}()

	var template *discovery.Template
	if cfg.Scraper.UseAltAPI {
		template = discovery.FallbackTemplate(cfg.Scraper.CategoryURL, cfg.Scraper.UserAgent)
		log.Info("using static api template", "endpoint", template.Endpoint)
	} else {
		cachePath := discovery.CachePath(cfg.Output.CacheDir, cfg.Scraper.CategoryURL)
		d := discovery.New(b, cfg.Scraper.CategoryURL, cfg.Scraper.UserAgent,
			cfg.Browser.Timeout, cachePath, cfg.Scraper.UseAltAPI)
		template, err = d.Discover()
		if err != nil {
			return err
		}
	}

	if db != nil {
		if err := db.InsertRun(ctx, models.Run{
			RunID:       runID,
			StartedAt:   time.Now().UTC(),
			CategoryURL: cfg.Scraper.CategoryURL,
			MaxPages:    cfg.Scraper.MaxPages,
			Status:      models.StatusRunning,
		}); err != nil {
			return err
		}
	}

	s := scraper.New(
		scraper.Options{
			CategoryURL:     cfg.Scraper.CategoryURL,
			MaxPages:        cfg.Scraper.MaxPages,
			Timeout:         cfg.Scraper.Timeout,
			UseHTMLFallback: cfg.Scraper.UseHTMLFallback,
		},
		fetch.NewAPIClient(template, cfg.Scraper.Timeout),
		b,
		ratelimit.NewJitterLimiter(cfg.Scraper.PageDelayMin, cfg.Scraper.PageDelayMax),
		metrics,
		debug.NewWriter(cfg.Output.DebugDir),
		log,
	)

	result, err := s.Run(ctx, runID)
	if err != nil {
		if db != nil {
			if ferr := db.FinishRun(ctx, runID, models.StatusError, err.Error()); ferr != nil {
				log.Warn("failed to record run failure", "error", ferr)
			}
		}
		return err
	}

	csvPath, err := pipeline.ExportResult(cfg.Output.ExportsDir, result)
	if err != nil {
		if db != nil {
			if ferr := db.FinishRun(ctx, runID, models.StatusError, err.Error()); ferr != nil {
				log.Warn("failed to record run failure", "error", ferr)
			}
		}
		return err
	}

	if db != nil {
		if err := db.SaveResult(ctx, result); err != nil {
			return err
		}
		if err := db.FinishRun(ctx, runID, result.Run.Status, result.Run.Note); err != nil {
			return err
		}
	}

	log.Info("run finished",
		"run_id", runID,
		"status", result.Run.Status,
		"rows", len(result.Rows),
		"pages", len(result.PageLogs),
		"csv", csvPath)
	return nil
}
