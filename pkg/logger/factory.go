package logger

import (
	"log/slog"
	"os"
)

// New creates a JSON-formatted logger with optional context extractors. It
// is the stdout-only half of NewWithActivityLog, for callers that have no
// need for the activity JSONL stream.
func New(extractors ...ContextExtractor) *slog.Logger {
	log := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(NewLogHandlerDecorator(log, extractors...))
}
