package wire

import (
	"bytes"
	"encoding/json"
	"time"
)

// DateTimeLayout is the exact format original_source/frestq/utils.py encodes
// and decodes: Python's "%Y-%m-%dT%H:%M:%S.%f".
const DateTimeLayout = "2006-01-02T15:04:05.000000"

// Dumps encodes v the way utils.dumps does: standard json.Marshal, since
// Go's time.Time already implements json.Marshaler via MarshalJSON on the
// wrapping Time type below. Callers that want datetime-aware encoding should
// use the Time type for any timestamp field instead of time.Time directly.
func Dumps(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Loads decodes data into a generic any tree and applies the same
// ambiguous auto-detection datetime_decoder performs: every plain JSON
// string matching DateTimeLayout becomes a time.Time, recursively, in
// objects and arrays alike. Use Loads when reading a JSONB blob or message
// body whose shape is not statically known; use typed structs with Time
// fields when it is.
func Loads(data []byte) (any, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return decodeDateTimes(v), nil
}

func decodeDateTimes(v any) any {
	switch val := v.(type) {
	case string:
		if t, err := time.Parse(DateTimeLayout, val); err == nil {
			return t
		}
		return val
	case map[string]any:
		for k, child := range val {
			val[k] = decodeDateTimes(child)
		}
		return val
	case []any:
		for i, child := range val {
			val[i] = decodeDateTimes(child)
		}
		return val
	default:
		return val
	}
}

// Time is a time.Time that marshals/unmarshals using DateTimeLayout,
// matching JSONDateTimeEncoder's output exactly instead of Go's default
// RFC3339Nano.
type Time time.Time

// MarshalJSON encodes t using DateTimeLayout.
func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(DateTimeLayout))
}

// UnmarshalJSON decodes t from DateTimeLayout.
func (t *Time) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(DateTimeLayout, s)
	if err != nil {
		return err
	}
	*t = Time(parsed)
	return nil
}

// Std returns the underlying time.Time.
func (t Time) Std() time.Time {
	return time.Time(t)
}
