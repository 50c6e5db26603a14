// Package events defines the audit record emitted for every orchestration
// step. The same envelope travels to WebSocket clients and, when a broker
// is configured, onto the spear.events exchange.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ── Routing keys ──────────────────────────────────────────────────────────────
const (
	RequestReceived  = "request.received"
	IntentClassified = "intent.classified"
	CodeGenerated    = "code.generated"
	CodeModified     = "code.modified"
	ChatReplied      = "chat.replied"
	RequestFailed    = "request.failed"
)

// Envelope wraps every audit record.
type Envelope struct {
	ID         string          `json:"id"`
	RoutingKey string          `json:"routing_key"`
	Timestamp  time.Time       `json:"ts"`
	Payload    json.RawMessage `json:"payload"`
}

func Wrap(routingKey string, payload any) ([]byte, error) {
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		ID:         uuid.New().String(),
		RoutingKey: routingKey,
		Timestamp:  time.Now(),
		Payload:    p,
	})
}

func Unwrap[T any](raw []byte) (*T, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	var t T
	return &t, json.Unmarshal(env.Payload, &t)
}

// ── Payload types ─────────────────────────────────────────────────────────────
//
// Payloads carry sizes and labels, never the generated code itself: the
// audit stream is for activity feeds and dashboards, not for content.

type RequestReceivedPayload struct {
	RequestID string `json:"request_id"`
	Route     string `json:"route"`
}

type IntentClassifiedPayload struct {
	RequestID string `json:"request_id"`
	Label     string `json:"label"`
}

type CodeGeneratedPayload struct {
	RequestID string `json:"request_id"`
	HTMLBytes int    `json:"html_bytes"`
	CSSBytes  int    `json:"css_bytes"`
	JSBytes   int    `json:"js_bytes"`
}

type CodeModifiedPayload struct {
	RequestID string `json:"request_id"`
	HTMLBytes int    `json:"html_bytes"`
	CSSBytes  int    `json:"css_bytes"`
	JSBytes   int    `json:"js_bytes"`
}

type ChatRepliedPayload struct {
	RequestID string `json:"request_id"`
	Label     string `json:"label"`
	Chars     int    `json:"chars"`
}

type RequestFailedPayload struct {
	RequestID string `json:"request_id"`
	Stage     string `json:"stage"`
	Error     string `json:"error"`
}
