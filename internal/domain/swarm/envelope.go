package swarm

import (
	"encoding/json"
	"fmt"
)

// PayloadType discriminates wire payloads on the transport's single data
// channel, so chat text and replication events never collide.
type PayloadType string

const (
	PayloadChat      PayloadType = "chat"
	PayloadTaskEvent PayloadType = "task-event"
)

// Envelope is the wire format for everything broadcast over a topic.
type Envelope struct {
	Type PayloadType     `json:"type"`
	Body json.RawMessage `json:"body"`
}

// ChatEnvelope wraps chat text for broadcast.
func ChatEnvelope(text string) (Envelope, error) {
	body, err := json.Marshal(text)
	if err != nil {
		return Envelope{}, fmt.Errorf("encoding chat body: %w", err)
	}
	return Envelope{Type: PayloadChat, Body: body}, nil
}

// TaskEventEnvelope wraps an already-serialized replication event.
func TaskEventEnvelope(body []byte) Envelope {
	return Envelope{Type: PayloadTaskEvent, Body: body}
}

// ChatText extracts the text of a chat envelope.
func (e Envelope) ChatText() (string, error) {
	if e.Type != PayloadChat {
		return "", fmt.Errorf("not a chat payload: %s", e.Type)
	}
	var text string
	if err := json.Unmarshal(e.Body, &text); err != nil {
		return "", fmt.Errorf("decoding chat body: %w", err)
	}
	return text, nil
}

// DecodeEnvelope parses an inbound payload. Payloads that are not valid
// envelopes are treated as bare chat text, which keeps interop with peers
// that predate the envelope format.
func DecodeEnvelope(payload []byte) Envelope {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err == nil && env.Type != "" {
		return env
	}
	body, _ := json.Marshal(string(payload))
	return Envelope{Type: PayloadChat, Body: body}
}
