package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sequentech/frestq-go/pkg/wire"
)

func TestUpdatePayloadRoundTrip(t *testing.T) {
	raw := []byte(`{"output_data":{"ok":true},"status":"finished"}`)
	var p updatePayload
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Equal(t, "finished", string(p.Status))
	assert.JSONEq(t, `{"ok":true}`, string(p.OutputData))
}

func TestSynchronizePayloadRoundTrip(t *testing.T) {
	pb := wire.Time(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	p := synchronizePayload{
		Action:       "app.step",
		QueueName:    "app",
		InputData:    json.RawMessage(`{"n":1}`),
		PingbackDate: &pb,
	}
	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded synchronizePayload
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, p.Action, decoded.Action)
	assert.Equal(t, p.QueueName, decoded.QueueName)
	require.NotNil(t, decoded.PingbackDate)
	assert.True(t, time.Time(*p.PingbackDate).Equal(time.Time(*decoded.PingbackDate)))
}

func TestConfirmPayloadRoundTrip(t *testing.T) {
	exp := wire.Time(time.Date(2026, 8, 1, 12, 1, 0, 0, time.UTC))
	p := confirmPayload{
		ReservationData:           json.RawMessage(`{"slot":3}`),
		ReservationExpirationDate: exp,
	}
	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded confirmPayload
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.JSONEq(t, `{"slot":3}`, string(decoded.ReservationData))
	assert.True(t, time.Time(exp).Equal(time.Time(decoded.ReservationExpirationDate)))
}

func TestTaskIDArgsRoundTrip(t *testing.T) {
	raw, err := json.Marshal(taskIDArgs{TaskID: "t-1"})
	require.NoError(t, err)
	var decoded taskIDArgs
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "t-1", decoded.TaskID)
}
