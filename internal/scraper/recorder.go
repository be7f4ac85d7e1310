package scraper

import (
	"log/slog"
	"sync"
	"time"

	"github.com/silpodev/silpo-scraper/internal/models"
)

// Recorder mirrors structured log calls into an append-only LogEvent list
// so the run trace can be handed to the sinks alongside the rows.
type Recorder struct {
	logger *slog.Logger
	mu     sync.Mutex
	events []models.LogEvent
}

func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

func (r *Recorder) Info(event, message string) {
	r.logger.Info(message, "event", event)
	r.append("INFO", event, message)
}

func (r *Recorder) Warn(event, message string) {
	r.logger.Warn(message, "event", event)
	r.append("WARN", event, message)
}

func (r *Recorder) Error(event, message string) {
	r.logger.Error(message, "event", event)
	r.append("ERROR", event, message)
}

func (r *Recorder) append(level, event, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, models.LogEvent{
		TS:      time.Now().UTC(),
		Level:   level,
		Event:   event,
		Message: message,
	})
}

// Events returns a copy of the collected trace.
func (r *Recorder) Events() []models.LogEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.LogEvent, len(r.events))
	copy(out, r.events)
	return out
}
