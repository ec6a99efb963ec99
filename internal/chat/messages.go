package chat

import "encoding/json"

// Envelope is the frame for every message in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// client -> server
type MessagePayload struct {
	Text string `json:"text"`
}

// server -> client
type ReadyPayload struct {
	Address string `json:"address"`
}

type ReplyPayload struct {
	Status int    `json:"status"`
	Text   string `json:"reply"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
