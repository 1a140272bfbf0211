package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AttemptEventType enumerates the kinds of events recorded during an attempt.
type AttemptEventType string

const (
	EventAttemptStarted AttemptEventType = "ATTEMPT_STARTED"
	EventAttemptResumed AttemptEventType = "ATTEMPT_RESUMED"
	EventAnswerSaved    AttemptEventType = "ANSWER_SAVED"
	EventTabSwitch      AttemptEventType = "TAB_SWITCH"
	EventNavigation     AttemptEventType = "NAVIGATION"
	EventSubmitted      AttemptEventType = "SUBMITTED"
	EventForceSubmitted AttemptEventType = "FORCE_SUBMITTED"
	EventCancelled      AttemptEventType = "CANCELLED"
	EventTimedOut       AttemptEventType = "TIMED_OUT"
	EventTimeExtended   AttemptEventType = "TIME_EXTENDED"
	EventProctorOpened  AttemptEventType = "PROCTOR_OPENED"
	EventWarningIssued  AttemptEventType = "WARNING_ISSUED"
)

// AttemptEvent is one row of the append-only attempt log. Rows are never
// updated or deleted; the repository exposes insert and read only.
type AttemptEvent struct {
	ID        int64            `json:"id"`
	AttemptID uuid.UUID        `json:"attempt_id"`
	EventType AttemptEventType `json:"event_type"`
	Payload   json.RawMessage  `json:"payload,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
