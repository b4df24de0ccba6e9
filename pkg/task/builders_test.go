package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sequentech/frestq-go/pkg/store"
)

func TestNewBaseTaskLocalWhenReceiverEmpty(t *testing.T) {
	tk, err := newBaseTask(store.TaskTypeSimple, Spec{
		Label:     "greet",
		Action:    "app.greet",
		QueueName: "app",
		Data:      map[string]string{"name": "ok"},
	}, "https://node-a.example")

	require.NoError(t, err)
	assert.True(t, tk.IsLocal)
	assert.Equal(t, "https://node-a.example", tk.ReceiverURL)
	assert.Equal(t, "https://node-a.example", tk.SenderURL)
	assert.Equal(t, store.StatusCreated, tk.Status)
	assert.JSONEq(t, `{"name":"ok"}`, string(tk.InputData))
}

func TestNewBaseTaskLocalWhenReceiverMatchesRoot(t *testing.T) {
	tk, err := newBaseTask(store.TaskTypeSimple, Spec{
		ReceiverURL: "https://node-a.example",
	}, "https://node-a.example")

	require.NoError(t, err)
	assert.True(t, tk.IsLocal)
}

func TestNewBaseTaskRemoteWhenReceiverDiffers(t *testing.T) {
	tk, err := newBaseTask(store.TaskTypeSimple, Spec{
		ReceiverURL: "https://node-b.example",
	}, "https://node-a.example")

	require.NoError(t, err)
	assert.False(t, tk.IsLocal)
	assert.Equal(t, "https://node-b.example", tk.ReceiverURL)
}
