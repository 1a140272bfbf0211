package realtime

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func newTestHub() *Hub {
	return NewHub(zerolog.Nop())
}

func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case msg := <-c.send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestHub_JoinIsIdempotent(t *testing.T) {
	h := newTestHub()
	attemptID := uuid.New()
	c := NewClient(attemptID)

	h.Join(c)
	h.Join(c)

	if got := h.GroupSize(attemptID); got != 1 {
		t.Fatalf("group size = %d, want 1", got)
	}

	h.Broadcast(attemptID, PongResponse{Event: EventPong})
	if msgs := drain(c); len(msgs) != 1 {
		t.Fatalf("double join delivered %d copies, want 1", len(msgs))
	}
}

func TestHub_LeaveIsIdempotent(t *testing.T) {
	h := newTestHub()
	attemptID := uuid.New()
	c := NewClient(attemptID)

	h.Join(c)
	h.Leave(c)
	h.Leave(c) // second leave must be a no-op

	if got := h.GroupSize(attemptID); got != 0 {
		t.Fatalf("group size after leave = %d, want 0", got)
	}

	h.Broadcast(attemptID, PongResponse{Event: EventPong})
	if msgs := drain(c); len(msgs) != 0 {
		t.Fatalf("left client still received %d messages", len(msgs))
	}
}

func TestHub_BroadcastScopedToGroup(t *testing.T) {
	h := newTestHub()
	attemptA := uuid.New()
	attemptB := uuid.New()

	ca := NewClient(attemptA)
	cb := NewClient(attemptB)
	h.Join(ca)
	h.Join(cb)

	h.NotifyWarning(attemptA, "stay on the exam tab")

	if msgs := drain(cb); len(msgs) != 0 {
		t.Fatalf("client in another group received %d messages", len(msgs))
	}

	msgs := drain(ca)
	if len(msgs) != 1 {
		t.Fatalf("group member received %d messages, want 1", len(msgs))
	}

	var notice WarningNotice
	if err := json.Unmarshal(msgs[0], &notice); err != nil {
		t.Fatalf("unmarshal notice: %v", err)
	}
	if notice.Event != EventWarning || notice.AttemptID != attemptA {
		t.Fatalf("unexpected notice: %+v", notice)
	}
}

func TestHub_BroadcastDropsForSlowClient(t *testing.T) {
	h := newTestHub()
	attemptID := uuid.New()
	c := NewClient(attemptID)
	h.Join(c)

	// Fill the buffer past capacity; the overflow must drop, not block.
	for i := 0; i < sendBuffer+5; i++ {
		h.Broadcast(attemptID, PongResponse{Event: EventPong})
	}

	if msgs := drain(c); len(msgs) != sendBuffer {
		t.Fatalf("buffered %d messages, want %d", len(msgs), sendBuffer)
	}
}

func TestHub_BroadcastExceptSkipsSender(t *testing.T) {
	h := newTestHub()
	attemptID := uuid.New()
	sender := NewClient(attemptID)
	peer := NewClient(attemptID)
	h.Join(sender)
	h.Join(peer)

	h.BroadcastExcept(attemptID, sender, SignalNotice{Event: EventSignal, Kind: "offer"})

	if msgs := drain(sender); len(msgs) != 0 {
		t.Fatalf("sender received its own signal (%d messages)", len(msgs))
	}
	if msgs := drain(peer); len(msgs) != 1 {
		t.Fatalf("peer received %d messages, want 1", len(msgs))
	}
}

func TestHub_NotifyTimeExtendedPayload(t *testing.T) {
	h := newTestHub()
	attemptID := uuid.New()
	c := NewClient(attemptID)
	h.Join(c)

	h.NotifyTimeExtended(attemptID, 10, 900)

	msgs := drain(c)
	if len(msgs) != 1 {
		t.Fatalf("received %d messages, want 1", len(msgs))
	}
	var notice ExtensionNotice
	if err := json.Unmarshal(msgs[0], &notice); err != nil {
		t.Fatalf("unmarshal notice: %v", err)
	}
	if notice.ExtraMinutes != 10 || notice.NewRemainingSeconds != 900 {
		t.Fatalf("unexpected extension notice: %+v", notice)
	}
}

func TestHub_NotifyWarningPayload(t *testing.T) {
	h := newTestHub()
	attemptID := uuid.New()
	c := NewClient(attemptID)
	h.Join(c)

	h.NotifyWarning(attemptID, "stay in frame")

	msgs := drain(c)
	if len(msgs) != 1 {
		t.Fatalf("received %d messages, want 1", len(msgs))
	}
	var notice WarningNotice
	if err := json.Unmarshal(msgs[0], &notice); err != nil {
		t.Fatalf("unmarshal notice: %v", err)
	}
	if notice.Event != EventWarning || notice.AttemptID != attemptID || notice.Message != "stay in frame" {
		t.Fatalf("unexpected warning notice: %+v", notice)
	}
}
