package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the possible states of an exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusPublished ExamStatus = "PUBLISHED"
	ExamStatusArchived  ExamStatus = "ARCHIVED"
)

// ScheduleType distinguishes exams with a fixed sitting from exams that
// may be started any time inside an availability window.
type ScheduleType string

const (
	ScheduleTypeFixed ScheduleType = "FIXED"
	ScheduleTypeFlex  ScheduleType = "FLEX"
)

// AccessMode controls who may start an attempt.
type AccessMode string

const (
	AccessModePublic     AccessMode = "PUBLIC"
	AccessModeAccessCode AccessMode = "ACCESS_CODE"
	AccessModeAssigned   AccessMode = "ASSIGNED"
)

// Exam represents an exam entity.
type Exam struct {
	ID               uuid.UUID    `json:"id"`
	Title            string       `json:"title"`
	AuthorID         int          `json:"author_id"`
	Status           ExamStatus   `json:"status"`
	ScheduleType     ScheduleType `json:"schedule_type"`
	WindowStart      *time.Time   `json:"window_start,omitempty"`
	WindowEnd        *time.Time   `json:"window_end,omitempty"`
	DurationMinutes  int          `json:"duration_minutes"`
	MaxAttempts      int          `json:"max_attempts"`
	AccessMode       AccessMode   `json:"access_mode"`
	AccessCode       string       `json:"access_code,omitempty"`
	ShuffleQuestions bool         `json:"shuffle_questions"`
	PassScore        float64      `json:"pass_score"`
	Instructions     []string     `json:"instructions,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// WindowOpen reports whether an attempt may start at the given instant.
// Fixed exams require now inside [WindowStart, WindowEnd]; flex exams
// only require now inside the availability bounds that are set.
func (e *Exam) WindowOpen(now time.Time) bool {
	if e.WindowStart != nil && now.Before(*e.WindowStart) {
		return false
	}
	if e.WindowEnd != nil && now.After(*e.WindowEnd) {
		return false
	}
	return true
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title            string     `json:"title" binding:"required,min=3,max=255"`
	ScheduleType     string     `json:"schedule_type" binding:"required,oneof=FIXED FLEX"`
	WindowStart      *time.Time `json:"window_start" binding:"omitempty"`
	WindowEnd        *time.Time `json:"window_end" binding:"omitempty,gtfield=WindowStart"`
	DurationMinutes  int        `json:"duration_minutes" binding:"required,min=1,max=480"`
	MaxAttempts      int        `json:"max_attempts" binding:"required,min=1,max=10"`
	AccessMode       string     `json:"access_mode" binding:"required,oneof=PUBLIC ACCESS_CODE ASSIGNED"`
	AccessCode       string     `json:"access_code" binding:"omitempty,min=4,max=20"`
	ShuffleQuestions bool       `json:"shuffle_questions"`
	PassScore        float64    `json:"pass_score" binding:"min=0"`
	Instructions     []string   `json:"instructions" binding:"omitempty,max=20,dive,max=2000"`
}

// UpdateExamRequest is the payload for updating an existing exam.
type UpdateExamRequest struct {
	Title            string     `json:"title" binding:"omitempty,min=3,max=255"`
	WindowStart      *time.Time `json:"window_start" binding:"omitempty"`
	WindowEnd        *time.Time `json:"window_end" binding:"omitempty,gtfield=WindowStart"`
	DurationMinutes  int        `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	MaxAttempts      int        `json:"max_attempts" binding:"omitempty,min=1,max=10"`
	AccessCode       string     `json:"access_code" binding:"omitempty,min=4,max=20"`
	ShuffleQuestions *bool      `json:"shuffle_questions" binding:"omitempty"`
	PassScore        *float64   `json:"pass_score" binding:"omitempty,min=0"`
	Instructions     []string   `json:"instructions" binding:"omitempty,max=20,dive,max=2000"`
}

// ExamAssignment restricts an ASSIGNED exam to a specific candidate.
type ExamAssignment struct {
	ID          int       `json:"id"`
	ExamID      uuid.UUID `json:"exam_id"`
	CandidateID int       `json:"candidate_id"`
}

// AttemptOverride grants a candidate attempts beyond Exam.MaxAttempts.
// A grant is consumed exactly once, by the start that uses it.
type AttemptOverride struct {
	ID            int       `json:"id"`
	ExamID        uuid.UUID `json:"exam_id"`
	CandidateID   int       `json:"candidate_id"`
	ExtraAttempts int       `json:"extra_attempts"`
	UsedAttempts  int       `json:"used_attempts"`
	GrantedBy     int       `json:"granted_by"`
	CreatedAt     time.Time `json:"created_at"`
}
