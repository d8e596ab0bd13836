// Package telemetry emits structured, PII-free events for chat turns. The
// primary sink is the process log; an optional HTTP side sink and an optional
// local SQLite store receive the same record. Telemetry is gated by a feature
// flag and must never block, fail, or alter the user-facing response.
package telemetry

import (
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeRequest  = "request"
	TypeResponse = "response"
)

// Error labels for failed turns.
const (
	ErrGatewayNon200      = "gateway_non_200"
	ErrGatewayUnreachable = "gateway_unreachable"
	ErrGatewayException   = "gateway_exception"
)

// Event is one telemetry record. It carries derived fields only — never raw
// message content, and never unredacted user text.
type Event struct {
	ID            string   `json:"id"`
	Source        string   `json:"source"`
	Timestamp     string   `json:"ts"`
	Type          string   `json:"type"`
	CorrelationID string   `json:"correlation_id,omitempty"`
	Page          string   `json:"page,omitempty"`
	Intent        string   `json:"intent,omitempty"`
	Actions       []string `json:"actions,omitempty"`
	HasHistory    bool     `json:"has_history,omitempty"`
	OK            *bool    `json:"ok,omitempty"`
	Error         string   `json:"error,omitempty"`
	LatencyMS     int64    `json:"latency_ms,omitempty"`
	ResponseLen   int      `json:"response_length,omitempty"`
	PolicyFlags   []string `json:"policy_flags,omitempty"`
	ModelUsed     string   `json:"model_used,omitempty"`
	Status        int      `json:"status,omitempty"`
	Debug         string   `json:"debug,omitempty"`
}

// newEvent stamps id, source, and timestamp on a caller-populated event.
func newEvent(e Event) Event {
	e.ID = "evt_" + uuid.New().String()[:8]
	e.Source = "teri"
	e.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return e
}

// Bool is a convenience for the OK pointer field.
func Bool(v bool) *bool { return &v }
