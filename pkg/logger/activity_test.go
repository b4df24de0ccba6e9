package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityHandlerWritesTimeAndActivityFields(t *testing.T) {
	var buf bytes.Buffer
	h := NewActivityHandler(&buf)
	log := slog.New(h)

	log.Info(`{"event":"task_reserved","task_id":"t-1"}`)

	var line struct {
		Time     string `json:"time"`
		Activity struct {
			Event  string `json:"event"`
			TaskID string `json:"task_id"`
		} `json:"activity"`
	}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "task_reserved", line.Activity.Event)
	assert.Equal(t, "t-1", line.Activity.TaskID)
	_, err := time.Parse(time.RFC3339Nano, line.Time)
	assert.NoError(t, err)
}

func TestActivityHandlerWrapsNonJSONMessage(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewActivityHandler(&buf))

	log.Info("worker started")

	var line struct {
		Activity struct {
			Message string `json:"message"`
		} `json:"activity"`
	}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "worker started", line.Activity.Message)
}

func TestActivityHandlerMergesAttrsIntoActivityObject(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewActivityHandler(&buf))

	log.Info(`{"event":"queued"}`, slog.String("queue", "app"))

	var line struct {
		Activity map[string]any `json:"activity"`
	}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "queued", line.Activity["event"])
	assert.Equal(t, "app", line.Activity["queue"])
}

func TestNewWithActivityLogFallsBackToStdoutOnly(t *testing.T) {
	log := NewWithActivityLog(ActivityConfig{})
	assert.NotNil(t, log)
}
