package wire

import "encoding/json"

// Envelope is the JSON body posted to POST /queues/{queue}/, grounded on
// original_source/frestq/tasks.py: send_message's msg_data and
// original_source/frestq/api.py: post_message's required-field validation.
type Envelope struct {
	MessageID string `json:"message_id"`
	Action    string `json:"action"`
	SenderURL string `json:"sender_url"`

	Data      json.RawMessage `json:"data,omitempty"`
	AsyncData json.RawMessage `json:"async_data,omitempty"`

	TaskID string `json:"task_id,omitempty"`

	PingbackDate   *Time  `json:"pingback_date,omitempty"`
	ExpirationDate *Time  `json:"expiration_date,omitempty"`
	Info           string `json:"info,omitempty"`
}

// RequiredFieldsPresent reports whether the three fields api.py's
// post_message treats as mandatory (message_id, action, sender_url) are set.
func (e Envelope) RequiredFieldsPresent() bool {
	return e.MessageID != "" && e.Action != "" && e.SenderURL != ""
}
