package logger

import (
	"io"
	"log/slog"
)

// NewNope creates a no-op logger that discards all output. cmd/frestqctl
// uses it; store.New, scheduler.New and the other constructors build an
// equivalent discard logger of their own when a caller never passes
// WithLogger.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
