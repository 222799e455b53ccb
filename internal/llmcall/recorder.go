package llmcall

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"

	"github.com/paperforge/paperforge/internal/providers"
)

// Recorder appends LLM call records to a JSONL file. Recording is
// best-effort: a failed write logs a warning and never fails the caller.
type Recorder struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewRecorder creates a recorder writing to the given path.
// An empty path disables recording.
func NewRecorder(path string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{path: path, logger: logger}
}

// Record captures an LLM call.
func (r *Recorder) Record(result *providers.ChatResult, opts RecordOptions) {
	r.RecordCall(FromChatResult(result, opts))
}

// RecordCall captures an already-constructed Call.
func (r *Recorder) RecordCall(call *Call) {
	if r.path == "" || call == nil {
		return
	}

	line, err := json.Marshal(call)
	if err != nil {
		r.logger.Warn("failed to marshal LLM call record", "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		r.logger.Warn("failed to open LLM call log", "path", r.path, "error", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		r.logger.Warn("failed to append LLM call record", "path", r.path, "error", err)
	}
}
