package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const sendBuffer = 32

// Client is one connected websocket keyed to an attempt group. The send
// channel decouples broadcasts from the socket write pump; when it is
// full the message is dropped, never queued unbounded.
type Client struct {
	AttemptID uuid.UUID
	send      chan []byte

	closeOnce sync.Once
}

// NewClient creates a client for an attempt group.
func NewClient(attemptID uuid.UUID) *Client {
	return &Client{
		AttemptID: attemptID,
		send:      make(chan []byte, sendBuffer),
	}
}

// Send exposes the outbound message stream for the write pump.
func (c *Client) Send() <-chan []byte {
	return c.send
}

// Close shuts the outbound stream. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// Push enqueues one payload on this client's own queue, for direct
// replies like pong. Same drop-when-full contract as Broadcast.
func (c *Client) Push(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// Hub is a pub/sub registry of clients grouped by attempt id. Delivery is
// at-most-once and best-effort: the authoritative attempt state lives in
// the store, never here.
type Hub struct {
	mu     sync.RWMutex
	groups map[uuid.UUID]map[*Client]struct{}
	log    zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		groups: make(map[uuid.UUID]map[*Client]struct{}),
		log:    log.With().Str("component", "realtime_hub").Logger(),
	}
}

// Join registers a client in its attempt group. Idempotent.
func (h *Hub) Join(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.groups[c.AttemptID]
	if !ok {
		group = make(map[*Client]struct{})
		h.groups[c.AttemptID] = group
	}
	group[c] = struct{}{}
}

// Leave removes a client from its group and drops empty groups.
// Idempotent: leaving twice is a no-op.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.groups[c.AttemptID]
	if !ok {
		return
	}
	if _, member := group[c]; !member {
		return
	}
	delete(group, c)
	if len(group) == 0 {
		delete(h.groups, c.AttemptID)
	}
}

// GroupSize reports how many clients are connected for an attempt.
func (h *Hub) GroupSize(attemptID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[attemptID])
}

// Broadcast marshals the payload once and enqueues it to every client in
// the attempt group. Slow clients lose messages instead of blocking the
// caller.
func (h *Hub) Broadcast(attemptID uuid.UUID, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Msg("Broadcast marshal failed")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.groups[attemptID] {
		select {
		case c.send <- data:
		default:
			h.log.Warn().Str("attempt_id", attemptID.String()).Msg("Dropping realtime message for slow client")
		}
	}
}

// BroadcastExcept is Broadcast minus one sender, used for relaying
// signaling messages back to the rest of the group.
func (h *Hub) BroadcastExcept(attemptID uuid.UUID, sender *Client, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Msg("Broadcast marshal failed")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.groups[attemptID] {
		if c == sender {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.log.Warn().Str("attempt_id", attemptID.String()).Msg("Dropping realtime message for slow client")
		}
	}
}

// ─── Typed notification helpers ─────────────────────────────────────
// These are the only push surfaces services and workers use; all of them
// are fire-and-forget.

// NotifyExpiry pushes a lifecycle-ending notice to the attempt group.
// The event distinguishes a natural expiry from a proctor termination;
// the reason carries the expiry classification.
func (h *Hub) NotifyExpiry(attemptID uuid.UUID, event Event, reason, message string) {
	h.Broadcast(attemptID, ExpiryNotice{
		Event:     event,
		AttemptID: attemptID,
		Reason:    reason,
		Message:   message,
	})
}

// NotifyTimeExtended pushes a timer update so a connected candidate's
// countdown adjusts without waiting for the next poll.
func (h *Hub) NotifyTimeExtended(attemptID uuid.UUID, extraMinutes, newRemainingSeconds int) {
	h.Broadcast(attemptID, ExtensionNotice{
		Event:               EventTimeExtended,
		AttemptID:           attemptID,
		ExtraMinutes:        extraMinutes,
		NewRemainingSeconds: newRemainingSeconds,
	})
}

// NotifyWarning pushes a proctoring warning to the attempt group.
func (h *Hub) NotifyWarning(attemptID uuid.UUID, message string) {
	h.Broadcast(attemptID, WarningNotice{
		Event:     EventWarning,
		AttemptID: attemptID,
		Message:   message,
	})
}
