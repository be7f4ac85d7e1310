package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Scraper.MaxPages)
	assert.True(t, cfg.Scraper.UseHTMLFallback)
	assert.False(t, cfg.Scraper.UseAltAPI)
	assert.Equal(t, "uk-UA", cfg.Browser.Locale)
	assert.Equal(t, "Europe/Kyiv", cfg.Browser.TimezoneID)
	assert.Equal(t, "data/exports", cfg.Output.ExportsDir)
	assert.Empty(t, cfg.Database.URL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCRAPER_CATEGORY_URL", "https://silpo.ua/category/syry-1468")
	t.Setenv("SCRAPER_MAX_PAGES", "3")
	t.Setenv("SCRAPER_TIMEOUT", "10s")
	t.Setenv("SCRAPER_HTML_FALLBACK", "false")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://silpo.ua/category/syry-1468", cfg.Scraper.CategoryURL)
	assert.Equal(t, 3, cfg.Scraper.MaxPages)
	assert.Equal(t, 10*time.Second, cfg.Scraper.Timeout)
	assert.False(t, cfg.Scraper.UseHTMLFallback)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadIgnoresUnparsableValues(t *testing.T) {
	t.Setenv("SCRAPER_MAX_PAGES", "many")
	t.Setenv("SCRAPER_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Scraper.MaxPages)
	assert.Equal(t, 30*time.Second, cfg.Scraper.Timeout)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Scraper.CategoryURL = "not-a-url"
	assert.Error(t, cfg.Validate())

	cfg.Scraper.CategoryURL = defaultCategoryURL
	cfg.Scraper.MaxPages = 0
	assert.Error(t, cfg.Validate())

	cfg.Scraper.MaxPages = 1
	cfg.Scraper.PageDelayMin = 10 * time.Second
	cfg.Scraper.PageDelayMax = time.Second
	assert.Error(t, cfg.Validate())
}
