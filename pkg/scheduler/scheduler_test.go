package scheduler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncRegistry(t *testing.T) {
	r := newFuncRegistry()

	_, ok := r.get("missing")
	assert.False(t, ok)

	called := false
	r.register("noop", func(ctx context.Context, args json.RawMessage) error {
		called = true
		return nil
	})

	fn, ok := r.get("noop")
	require.True(t, ok)
	require.NoError(t, fn(context.Background(), nil))
	assert.True(t, called)
}

func TestTypedRegistersDecodedPayload(t *testing.T) {
	type payload struct {
		TaskID string `json:"task_id"`
	}

	s := &Scheduler{funcs: newFuncRegistry()}
	var got payload
	Typed(s, "handle_task", func(ctx context.Context, p payload) error {
		got = p
		return nil
	})

	fn, ok := s.funcs.get("handle_task")
	require.True(t, ok)
	require.NoError(t, fn(context.Background(), json.RawMessage(`{"task_id":"abc"}`)))
	assert.Equal(t, "abc", got.TaskID)
}

func TestIsExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, isExpired(nil, now))
	assert.True(t, isExpired(&past, now))
	assert.False(t, isExpired(&future, now))
}
