// Package debug writes per-page debug artifacts: raw API responses and
// HTML snapshots on challenge detection. Write-only, never read back, and
// never fatal to the run.
package debug

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter returns a Writer rooted at dir. An empty dir disables all
// artifact writes.
func NewWriter(dir string) *Writer {
	return &Writer{
		dir:    dir,
		logger: slog.Default().With("component", "debug"),
	}
}

// DumpAPIResponse stores the raw API payload for one page.
func (w *Writer) DumpAPIResponse(runID string, pageNo int, raw []byte) {
	if w == nil || w.dir == "" || len(raw) == 0 {
		return
	}
	w.write(fmt.Sprintf("api_%s_p%03d.json", shortID(runID), pageNo), raw)
}

// SnapshotHTML stores the rendered HTML of a page, used on challenge
// detection.
func (w *Writer) SnapshotHTML(runID string, pageNo int, html string) {
	if w == nil || w.dir == "" || html == "" {
		return
	}
	w.write(fmt.Sprintf("challenge_%s_p%03d.html", shortID(runID), pageNo), []byte(html))
}

func (w *Writer) write(name string, data []byte) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		w.logger.Warn("failed to create debug dir", "dir", w.dir, "error", err)
		return
	}
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		w.logger.Warn("failed to write debug artifact", "path", path, "error", err)
	}
}

func shortID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}
