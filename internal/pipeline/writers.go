// Package pipeline writes finalized run output: the CSV product export
// and the JSONL event log. Files are written under the exports directory
// with a per-run name plus a "latest" copy for quick inspection.
package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/silpodev/silpo-scraper/internal/models"
)

// CSVWriter writes product rows to CSV.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter initialises a CSV writer and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(models.Header()); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{
		file:   f,
		writer: writer,
	}, nil
}

// Write appends product rows to the CSV output.
func (cw *CSVWriter) Write(rows []models.ProductRow) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, row := range rows {
		if err := cw.writer.Write(row.Record()); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// EventWriter writes run trace events as newline-delimited JSON.
type EventWriter struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewEventWriter initialises the JSONL event writer.
func NewEventWriter(filename string) (*EventWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create events file: %w", err)
	}

	buffer := bufio.NewWriter(f)
	return &EventWriter{
		file:    f,
		writer:  buffer,
		encoder: json.NewEncoder(buffer),
	}, nil
}

// Write appends events in JSONL format.
func (ew *EventWriter) Write(events []models.LogEvent) error {
	ew.mu.Lock()
	defer ew.mu.Unlock()

	for _, ev := range events {
		if err := ew.encoder.Encode(ev); err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
	}

	if err := ew.writer.Flush(); err != nil {
		return fmt.Errorf("flush events writer: %w", err)
	}
	return nil
}

// Close flushes buffers and closes the underlying file.
func (ew *EventWriter) Close() error {
	ew.mu.Lock()
	defer ew.mu.Unlock()

	if err := ew.writer.Flush(); err != nil {
		return fmt.Errorf("flush events writer: %w", err)
	}
	return ew.file.Close()
}

// ExportResult writes a run's rows and events under dir. It produces
// products_<run_id>.csv and events_<run_id>.jsonl, and refreshes
// products_latest.csv with a copy of the new export.
func ExportResult(dir string, result *models.RunResult) (string, error) {
	runID := result.Run.RunID

	csvPath := filepath.Join(dir, fmt.Sprintf("products_%s.csv", runID))
	cw, err := NewCSVWriter(csvPath)
	if err != nil {
		return "", err
	}
	if err := cw.Write(result.Rows); err != nil {
		cw.Close()
		return "", err
	}
	if err := cw.Close(); err != nil {
		return "", err
	}

	eventsPath := filepath.Join(dir, fmt.Sprintf("events_%s.jsonl", runID))
	ew, err := NewEventWriter(eventsPath)
	if err != nil {
		return "", err
	}
	if err := ew.Write(result.Events); err != nil {
		ew.Close()
		return "", err
	}
	if err := ew.Close(); err != nil {
		return "", err
	}

	if err := copyFile(csvPath, filepath.Join(dir, "products_latest.csv")); err != nil {
		return "", err
	}

	return csvPath, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %q: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %q: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %q: %w", dst, err)
	}
	return out.Close()
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
