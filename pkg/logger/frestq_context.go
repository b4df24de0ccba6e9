package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	taskIDKey ctxKey = iota
	queueNameKey
	peerURLKey
)

// WithTaskID attaches a task id to ctx for TaskIDExtractor to pick up.
func WithTaskID(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, taskIDKey, taskID)
}

// WithQueueName attaches a queue name to ctx for QueueNameExtractor.
func WithQueueName(ctx context.Context, queue string) context.Context {
	return context.WithValue(ctx, queueNameKey, queue)
}

// WithPeerURL attaches the remote node URL a request or message came from,
// for PeerURLExtractor.
func WithPeerURL(ctx context.Context, url string) context.Context {
	return context.WithValue(ctx, peerURLKey, url)
}

// TaskIDExtractor surfaces the task id set by WithTaskID as task_id.
func TaskIDExtractor(ctx context.Context) (slog.Attr, bool) {
	v, ok := ctx.Value(taskIDKey).(string)
	if !ok || v == "" {
		return slog.Attr{}, false
	}
	return slog.String("task_id", v), true
}

// QueueNameExtractor surfaces the queue name set by WithQueueName as queue.
func QueueNameExtractor(ctx context.Context) (slog.Attr, bool) {
	v, ok := ctx.Value(queueNameKey).(string)
	if !ok || v == "" {
		return slog.Attr{}, false
	}
	return slog.String("queue", v), true
}

// PeerURLExtractor surfaces the peer URL set by WithPeerURL as peer_url.
func PeerURLExtractor(ctx context.Context) (slog.Attr, bool) {
	v, ok := ctx.Value(peerURLKey).(string)
	if !ok || v == "" {
		return slog.Attr{}, false
	}
	return slog.String("peer_url", v), true
}
