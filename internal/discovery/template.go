package discovery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Template is a captured, replayable description of the category API call.
// Immutable once captured; strategies deep-copy the body before mutating
// pagination fields.
type Template struct {
	Endpoint string            `json:"endpoint"`
	Method   string            `json:"method"`
	Headers  map[string]string `json:"headers"`
	Cookies  map[string]string `json:"cookies"`
	Body     map[string]any    `json:"body"`
}

// Headers that survive sanitization. Everything else captured from the
// browser (sec-*, x-*, auth material) is stripped.
var headerAllowList = map[string]bool{
	"accept":          true,
	"accept-language": true,
	"content-type":    true,
	"origin":          true,
	"referer":         true,
	"user-agent":      true,
}

// SanitizeHeaders reduces captured headers to the allow-listed subset and
// injects the category URL as referer.
func SanitizeHeaders(captured map[string]string, categoryURL, userAgent, origin string) map[string]string {
	out := make(map[string]string)
	for k, v := range captured {
		lk := strings.ToLower(k)
		if headerAllowList[lk] {
			out[lk] = v
		}
	}
	if _, present := out["accept"]; !present {
		out["accept"] = "application/json, text/plain, */*"
	}
	if _, present := out["content-type"]; !present {
		out["content-type"] = "application/json"
	}
	if _, present := out["origin"]; !present {
		out["origin"] = origin
	}
	out["referer"] = categoryURL
	out["user-agent"] = userAgent
	return out
}

// LoadCached reads a template from the cache path. A missing or corrupt
// cache file is not an error; it just forces live discovery.
func LoadCached(path string) (*Template, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var tpl Template
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, false
	}
	if tpl.Endpoint == "" || tpl.Method == "" {
		return nil, false
	}
	return &tpl, true
}

// Save persists a template to the cache path via a temp-file rename.
func Save(path string, tpl *Template) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write template cache: %w", err)
	}
	return os.Rename(tmp, path)
}

// CachePath derives a per-category cache file name under dir.
func CachePath(dir, categoryURL string) string {
	slug := categoryURL
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		slug = slug[i+1:]
	}
	if i := strings.IndexAny(slug, "?#"); i >= 0 {
		slug = slug[:i]
	}
	if slug == "" {
		slug = "category"
	}
	return filepath.Join(dir, "api_template_"+slug+".json")
}
