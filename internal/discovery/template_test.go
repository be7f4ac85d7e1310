package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeHeaders(t *testing.T) {
	captured := map[string]string{
		"Accept":          "application/json",
		"Authorization":   "Bearer secret",
		"Cookie":          "sid=123",
		"Sec-Fetch-Mode":  "cors",
		"X-Request-Id":    "abc",
		"Accept-Language": "uk-UA",
	}

	out := SanitizeHeaders(captured, "https://silpo.ua/category/molochni-234", "test-agent", "https://silpo.ua")

	assert.Equal(t, "application/json", out["accept"])
	assert.Equal(t, "uk-UA", out["accept-language"])
	assert.Equal(t, "https://silpo.ua/category/molochni-234", out["referer"])
	assert.Equal(t, "test-agent", out["user-agent"])
	assert.Equal(t, "https://silpo.ua", out["origin"])
	assert.Equal(t, "application/json", out["content-type"])

	// Nothing outside the allow-list survives.
	for k := range out {
		assert.Contains(t, []string{"accept", "accept-language", "content-type", "origin", "referer", "user-agent"}, k)
	}
}

func TestTemplateCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache", "tpl.json")

	tpl := &Template{
		Endpoint: "https://" + EndpointSubstr,
		Method:   "POST",
		Headers:  map[string]string{"accept": "application/json"},
		Cookies:  map[string]string{"sid": "abc"},
		Body:     map[string]any{"page": map[string]any{"number": float64(1)}},
	}

	require.NoError(t, Save(path, tpl))

	loaded, hit := LoadCached(path)
	require.True(t, hit)
	assert.Equal(t, tpl.Endpoint, loaded.Endpoint)
	assert.Equal(t, tpl.Method, loaded.Method)
	assert.Equal(t, tpl.Cookies, loaded.Cookies)
	assert.Equal(t, tpl.Body, loaded.Body)
}

func TestLoadCachedMissingOrCorrupt(t *testing.T) {
	dir := t.TempDir()

	_, hit := LoadCached(filepath.Join(dir, "absent.json"))
	assert.False(t, hit)

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0o644))
	_, hit = LoadCached(corrupt)
	assert.False(t, hit)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("{}"), 0o644))
	_, hit = LoadCached(empty)
	assert.False(t, hit)
}

func TestFallbackTemplate(t *testing.T) {
	tpl := FallbackTemplate("https://silpo.ua/category/molochni-produkty-234", "agent")

	assert.Contains(t, tpl.Endpoint, EndpointSubstr)
	assert.Equal(t, "POST", tpl.Method)
	assert.Equal(t, "agent", tpl.Headers["user-agent"])
	assert.Equal(t, "molochni-produkty-234", tpl.Body["category"])

	page, isMap := tpl.Body["page"].(map[string]any)
	require.True(t, isMap)
	assert.Equal(t, 1, page["number"])
}

func TestCachePath(t *testing.T) {
	path := CachePath("/tmp/cache", "https://silpo.ua/category/molochni-234?page=2")
	assert.Equal(t, "/tmp/cache/api_template_molochni-234.json", path)
}
