package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// activityHandler writes one JSON line per record in the shape
// {"time": "<rfc3339>", "activity": <event>}, mirroring the FileHandler
// and "%(asctime)s"/"%(message)s" formatter the scheduler used for its
// activity.json.log. The record message is expected to already be a JSON
// object describing the event; records whose message isn't valid JSON are
// wrapped as a string so nothing is ever dropped.
type activityHandler struct {
	mu   *sync.Mutex
	w    io.Writer
	grp  []string
	attr []slog.Attr
}

// NewActivityHandler returns a slog.Handler that appends newline-delimited
// activity records to w. Pair it with multiHandler to fan events out
// alongside the normal stdout/Sentry logger.
func NewActivityHandler(w io.Writer) slog.Handler {
	return &activityHandler{mu: &sync.Mutex{}, w: w}
}

func (h *activityHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *activityHandler) Handle(_ context.Context, rec slog.Record) error {
	event := activityEvent(rec.Message)
	for _, a := range h.attr {
		event = mergeActivityAttr(event, a)
	}
	rec.Attrs(func(a slog.Attr) bool {
		event = mergeActivityAttr(event, a)
		return true
	})

	line := struct {
		Time     string          `json:"time"`
		Activity json.RawMessage `json:"activity"`
	}{
		Time:     rec.Time.Format(time.RFC3339Nano),
		Activity: event,
	}

	raw, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("logger: marshal activity record: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(append(raw, '\n'))
	return err
}

func (h *activityHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &activityHandler{mu: h.mu, w: h.w, grp: h.grp}
	next.attr = append(next.attr, h.attr...)
	next.attr = append(next.attr, attrs...)
	return next
}

func (h *activityHandler) WithGroup(name string) slog.Handler {
	next := &activityHandler{mu: h.mu, w: h.w, attr: h.attr}
	next.grp = append(next.grp, h.grp...)
	next.grp = append(next.grp, name)
	return next
}

// activityEvent treats msg as a pre-built JSON object when possible,
// falling back to {"message": msg} otherwise.
func activityEvent(msg string) json.RawMessage {
	trimmed := []byte(msg)
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	wrapped, err := json.Marshal(map[string]string{"message": msg})
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return wrapped
}

func mergeActivityAttr(event json.RawMessage, a slog.Attr) json.RawMessage {
	var obj map[string]any
	if err := json.Unmarshal(event, &obj); err != nil || obj == nil {
		obj = map[string]any{"message": json.RawMessage(event)}
	}
	obj[a.Key] = a.Value.Any()
	merged, err := json.Marshal(obj)
	if err != nil {
		return event
	}
	return merged
}
