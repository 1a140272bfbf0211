package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates attempt lifecycle states.
type AttemptStatus string

const (
	AttemptStatusStarted    AttemptStatus = "STARTED"
	AttemptStatusInProgress AttemptStatus = "IN_PROGRESS"
	AttemptStatusResumed    AttemptStatus = "RESUMED"
	AttemptStatusSubmitted  AttemptStatus = "SUBMITTED"
	AttemptStatusExpired    AttemptStatus = "EXPIRED"
	AttemptStatusCancelled  AttemptStatus = "CANCELLED"
)

// ActiveAttemptStatuses is the set of non-terminal statuses. Every
// conditional transition and every scanner query keys off this set.
var ActiveAttemptStatuses = []AttemptStatus{
	AttemptStatusStarted,
	AttemptStatusInProgress,
	AttemptStatusResumed,
}

// IsTerminal reports whether the status admits no further transitions.
func (s AttemptStatus) IsTerminal() bool {
	switch s {
	case AttemptStatusSubmitted, AttemptStatusExpired, AttemptStatusCancelled:
		return true
	}
	return false
}

// ExpiryReason classifies why an attempt ended.
type ExpiryReason string

const (
	ExpiryReasonNone              ExpiryReason = "NONE"
	ExpiryReasonTimerActive       ExpiryReason = "TIMER_EXPIRED_WHILE_ACTIVE"
	ExpiryReasonTimerDisconnected ExpiryReason = "TIMER_EXPIRED_WHILE_DISCONNECTED"
	ExpiryReasonExamWindowClosed  ExpiryReason = "EXAM_WINDOW_CLOSED"
	ExpiryReasonManuallyCancelled ExpiryReason = "MANUALLY_CANCELLED"
	ExpiryReasonForceSubmitted    ExpiryReason = "FORCE_SUBMITTED"
)

// Attempt represents one candidate's timed run through an exam.
type Attempt struct {
	ID            uuid.UUID `json:"id"`
	ExamID        uuid.UUID `json:"exam_id"`
	CandidateID   int       `json:"candidate_id"`
	AttemptNumber int       `json:"attempt_number"`

	StartedAt        time.Time  `json:"started_at"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`
	ExpiresAt        time.Time  `json:"expires_at"`
	ExtraTimeSeconds int        `json:"extra_time_seconds"`
	LastActivityAt   time.Time  `json:"last_activity_at"`
	ResumeCount      int        `json:"resume_count"`

	Status       AttemptStatus `json:"status"`
	ExpiryReason ExpiryReason  `json:"expiry_reason"`

	TotalScore *float64 `json:"total_score,omitempty"`
	IsPassed   *bool    `json:"is_passed,omitempty"`

	ForceSubmittedBy *int       `json:"force_submitted_by,omitempty"`
	ForceSubmittedAt *time.Time `json:"force_submitted_at,omitempty"`
	DeviceInfo       *string    `json:"device_info,omitempty"`
	IPAddress        *string    `json:"ip_address,omitempty"`
}

// ClassifyExpiry picks the timer expiry reason for an attempt whose own
// deadline has lapsed. Activity within the grace window before expires_at
// counts as active at the deadline; anything older means the candidate
// had already disconnected.
func (a *Attempt) ClassifyExpiry(grace time.Duration) ExpiryReason {
	if a.LastActivityAt.Before(a.ExpiresAt.Add(-grace)) {
		return ExpiryReasonTimerDisconnected
	}
	return ExpiryReasonTimerActive
}

// RemainingSeconds computes the server-authoritative countdown at the
// given instant. Never negative.
func (a *Attempt) RemainingSeconds(now time.Time) int {
	remaining := a.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds())
}

// AttemptQuestion is an immutable snapshot of a question assigned to an
// attempt. Order and points are frozen at creation time so later edits
// to the exam cannot retroactively change an in-progress or graded attempt.
type AttemptQuestion struct {
	ID           uuid.UUID    `json:"id"`
	AttemptID    uuid.UUID    `json:"attempt_id"`
	QuestionID   uuid.UUID    `json:"question_id"`
	QuestionType QuestionType `json:"question_type"`
	OrderNum     int          `json:"order_num"`
	Points       float64      `json:"points"`
}

// AttemptAnswer holds one candidate answer per (attempt, question).
// Uniqueness on that pair gives upsert semantics — never a duplicate row.
type AttemptAnswer struct {
	ID                uuid.UUID  `json:"id"`
	AttemptID         uuid.UUID  `json:"attempt_id"`
	QuestionID        uuid.UUID  `json:"question_id"`
	SelectedOptionIDs []string   `json:"selected_option_ids,omitempty"`
	TextAnswer        *string    `json:"text_answer,omitempty"`
	AnsweredAt        time.Time  `json:"answered_at"`
	IsCorrect         *bool      `json:"is_correct,omitempty"`
	Score             *float64   `json:"score,omitempty"`
}

// StartAttemptRequest is the payload for starting (or resuming) an attempt.
type StartAttemptRequest struct {
	AccessCode string `json:"access_code" binding:"omitempty,min=4,max=20"`
}

// SaveAnswerRequest is the payload for saving one answer.
type SaveAnswerRequest struct {
	QuestionID        uuid.UUID `json:"question_id" binding:"required"`
	SelectedOptionIDs []string  `json:"selected_option_ids" binding:"omitempty,max=26"`
	TextAnswer        *string   `json:"text_answer" binding:"omitempty,max=20000"`
}

// BulkSaveAnswersRequest is the payload for saving a batch of answers.
type BulkSaveAnswersRequest struct {
	Answers []SaveAnswerRequest `json:"answers" binding:"required,min=1,max=200,dive"`
}

// ForceSubmitRequest is the admin payload for force-submitting an attempt.
type ForceSubmitRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

// CancelAttemptRequest is the admin payload for cancelling an attempt.
type CancelAttemptRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

// ExtendTimeRequest is the admin payload for granting extra time.
type ExtendTimeRequest struct {
	ExtraMinutes int `json:"extra_minutes" binding:"required,min=1,max=240"`
}

// WarnAttemptRequest is the admin payload for a proctoring warning.
type WarnAttemptRequest struct {
	Message string `json:"message" binding:"required,min=3,max=500"`
}
