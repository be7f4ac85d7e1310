package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Scraper  ScraperConfig
	Browser  BrowserConfig
	Output   OutputConfig
	Database DatabaseConfig
	Server   ServerConfig
	Logging  LoggingConfig
}

type ScraperConfig struct {
	CategoryURL     string
	MaxPages        int
	Timeout         time.Duration
	UserAgent       string
	UseHTMLFallback bool
	UseAltAPI       bool
	PageDelayMin    time.Duration
	PageDelayMax    time.Duration
}

type BrowserConfig struct {
	Headless   bool
	Timeout    time.Duration
	Locale     string
	TimezoneID string
}

type OutputConfig struct {
	DataDir    string
	ExportsDir string
	DebugDir   string
	CacheDir   string
}

type DatabaseConfig struct {
	URL string
}

type ServerConfig struct {
	MetricsAddr string
}

type LoggingConfig struct {
	Level  string
	Format string
}

const (
	defaultCategoryURL = "https://silpo.ua/category/molochni-produkty-ta-iaitsia-234"
	defaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

func Load() (*Config, error) {
	// Missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{
		Scraper: ScraperConfig{
			CategoryURL:     getEnvOrDefault("SCRAPER_CATEGORY_URL", defaultCategoryURL),
			MaxPages:        getIntOrDefault("SCRAPER_MAX_PAGES", 5),
			Timeout:         getDurationOrDefault("SCRAPER_TIMEOUT", 30*time.Second),
			UserAgent:       getEnvOrDefault("SCRAPER_USER_AGENT", defaultUserAgent),
			UseHTMLFallback: getBoolOrDefault("SCRAPER_HTML_FALLBACK", true),
			UseAltAPI:       getBoolOrDefault("SCRAPER_ALT_API", false),
			PageDelayMin:    getDurationOrDefault("SCRAPER_PAGE_DELAY_MIN", 2*time.Second),
			PageDelayMax:    getDurationOrDefault("SCRAPER_PAGE_DELAY_MAX", 6*time.Second),
		},
		Browser: BrowserConfig{
			Headless:   getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:    getDurationOrDefault("BROWSER_TIMEOUT", 45*time.Second),
			Locale:     getEnvOrDefault("BROWSER_LOCALE", "uk-UA"),
			TimezoneID: getEnvOrDefault("BROWSER_TIMEZONE", "Europe/Kyiv"),
		},
		Output: OutputConfig{
			DataDir:    getEnvOrDefault("OUTPUT_DATA_DIR", "data"),
			ExportsDir: getEnvOrDefault("OUTPUT_EXPORTS_DIR", "data/exports"),
			DebugDir:   getEnvOrDefault("OUTPUT_DEBUG_DIR", "data/debug"),
			CacheDir:   getEnvOrDefault("OUTPUT_CACHE_DIR", "data/cache"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Server: ServerConfig{
			MetricsAddr: getEnvOrDefault("METRICS_ADDR", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Scraper.CategoryURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SCRAPER_CATEGORY_URL must be an absolute URL")
	}

	if c.Scraper.MaxPages < 1 {
		return fmt.Errorf("SCRAPER_MAX_PAGES must be at least 1")
	}

	if c.Scraper.PageDelayMin > c.Scraper.PageDelayMax {
		return fmt.Errorf("SCRAPER_PAGE_DELAY_MIN cannot be greater than SCRAPER_PAGE_DELAY_MAX")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
