package realtime

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionJoin             Action = "join"
	ActionLeave            Action = "leave"
	ActionPing             Action = "ping"
	ActionConnectionStatus Action = "connection_status"
	ActionSignal           Action = "signal"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ConnectionStatusRequest reports the client's own connection health.
type ConnectionStatusRequest struct {
	Action Action `json:"action"`
	State  string `json:"state"` // "stable" | "degraded" | "reconnecting"
}

// SignalRequest relays a WebRTC signaling message (offer/answer/ICE) to
// the other members of the attempt group.
type SignalRequest struct {
	Action  Action          `json:"action"`
	Kind    string          `json:"kind"` // "offer" | "answer" | "ice"
	Payload json.RawMessage `json:"payload"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventConnected      Event = "connected"
	EventPong           Event = "pong"
	EventError          Event = "error"
	EventAttemptExpired Event = "attempt_expired"
	EventTimeExtended   Event = "time_extended"
	EventWarning        Event = "warning"
	EventTerminated     Event = "terminated"
	EventSignal         Event = "signal"
)

// ConnectedNotice is the first frame on a fresh stream: the proctoring
// session plus the authoritative countdown at connect time.
type ConnectedNotice struct {
	Event            Event     `json:"event"`
	AttemptID        uuid.UUID `json:"attempt_id"`
	SessionID        uuid.UUID `json:"session_id"`
	RemainingSeconds int       `json:"remaining_seconds"`
}

// ExpiryNotice tells connected clients their attempt has been closed.
type ExpiryNotice struct {
	Event     Event     `json:"event"`
	AttemptID uuid.UUID `json:"attempt_id"`
	Reason    string    `json:"reason"`
	Message   string    `json:"message"`
}

// ExtensionNotice tells connected clients their timer grew.
type ExtensionNotice struct {
	Event               Event     `json:"event"`
	AttemptID           uuid.UUID `json:"attempt_id"`
	ExtraMinutes        int       `json:"extra_minutes"`
	NewRemainingSeconds int       `json:"new_remaining_seconds"`
}

// WarningNotice carries a proctoring warning or termination message.
type WarningNotice struct {
	Event     Event     `json:"event"`
	AttemptID uuid.UUID `json:"attempt_id"`
	Message   string    `json:"message"`
}

// SignalNotice relays WebRTC signaling within the attempt group.
type SignalNotice struct {
	Event   Event           `json:"event"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
