package wire

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeRoundTrip(t *testing.T) {
	original := time.Date(2026, 8, 1, 12, 30, 0, 123000000, time.UTC)
	b, err := json.Marshal(Time(original))
	require.NoError(t, err)
	assert.Equal(t, `"2026-08-01T12:30:00.123000"`, string(b))

	var decoded Time
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.True(t, original.Equal(decoded.Std()))
}

func TestLoadsAmbiguouslyDecodesMatchingStrings(t *testing.T) {
	raw := []byte(`{"created_date":"2026-08-01T12:30:00.000000","label":"not a date"}`)

	decoded, err := Loads(raw)
	require.NoError(t, err)

	m, ok := decoded.(map[string]any)
	require.True(t, ok)

	_, isTime := m["created_date"].(time.Time)
	assert.True(t, isTime, "string matching the layout is opportunistically decoded as a time.Time")

	_, stillString := m["label"].(string)
	assert.True(t, stillString)
}

func TestEnvelopeRequiredFields(t *testing.T) {
	e := Envelope{MessageID: "m1", Action: "frestq.update_task", SenderURL: "http://node-a/api/queues"}
	assert.True(t, e.RequiredFieldsPresent())

	e.SenderURL = ""
	assert.False(t, e.RequiredFieldsPresent())
}
