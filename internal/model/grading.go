package model

import (
	"time"

	"github.com/google/uuid"
)

// GradingStatus enumerates grading session states.
type GradingStatus string

const (
	GradingStatusNotStarted GradingStatus = "NOT_STARTED"
	GradingStatusInProgress GradingStatus = "IN_PROGRESS"
	GradingStatusCompleted  GradingStatus = "COMPLETED"
)

// GradingSession is the unit of work that computes and holds scores for
// one attempt. PassScore is snapshotted from the exam at grading time so
// a later pass-score edit cannot change an already graded attempt.
type GradingSession struct {
	ID                    uuid.UUID     `json:"id"`
	AttemptID             uuid.UUID     `json:"attempt_id"`
	Status                GradingStatus `json:"status"`
	TotalScore            float64       `json:"total_score"`
	MaxPossibleScore      float64       `json:"max_possible_score"`
	PassScore             float64       `json:"pass_score"`
	ManualGradingRequired int           `json:"manual_grading_required"`
	CreatedAt             time.Time     `json:"created_at"`
	CompletedAt           *time.Time    `json:"completed_at,omitempty"`
}

// GradedAnswer holds the grading outcome for one question in a session.
// Mutable only through manual grading and regrade.
type GradedAnswer struct {
	ID               uuid.UUID `json:"id"`
	GradingSessionID uuid.UUID `json:"grading_session_id"`
	QuestionID       uuid.UUID `json:"question_id"`
	Score            float64   `json:"score"`
	MaxScore         float64   `json:"max_score"`
	IsCorrect        *bool     `json:"is_correct,omitempty"`
	IsManuallyGraded bool      `json:"is_manually_graded"`
	GraderComment    *string   `json:"grader_comment,omitempty"`
}

// RegradeLogEntry is one row of the insert-only regrade audit trail.
type RegradeLogEntry struct {
	ID               int64     `json:"id"`
	GradingSessionID uuid.UUID `json:"grading_session_id"`
	QuestionID       uuid.UUID `json:"question_id"`
	PreviousScore    float64   `json:"previous_score"`
	NewScore         float64   `json:"new_score"`
	Reason           string    `json:"reason"`
	GradedBy         int       `json:"graded_by"`
	CreatedAt        time.Time `json:"created_at"`
}

// ManualGradeRequest is the grader payload for scoring one question.
type ManualGradeRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Score      float64   `json:"score" binding:"min=0"`
	IsCorrect  bool      `json:"is_correct"`
	Comment    string    `json:"comment" binding:"omitempty,max=2000"`
}

// BulkManualGradeRequest grades several questions in one call.
type BulkManualGradeRequest struct {
	Grades []ManualGradeRequest `json:"grades" binding:"required,min=1,max=200,dive"`
}

// CompleteGradingRequest finishes a grading session. ForceComplete
// permits completion while manual items remain at their current score.
type CompleteGradingRequest struct {
	ForceComplete bool `json:"force_complete"`
}

// RegradeRequest corrects a previously graded answer.
type RegradeRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	NewScore   float64   `json:"new_score" binding:"min=0"`
	IsCorrect  bool      `json:"is_correct"`
	Reason     string    `json:"reason" binding:"required,min=3,max=500"`
}
