package model

import (
	"time"

	"github.com/google/uuid"
)

// Result is the finalized outcome record for an attempt. It stores a
// point-in-time snapshot of score, max and pass-score, so later edits to
// the exam cannot change a finalized outcome. Only a published Result is
// visible to the candidate.
type Result struct {
	ID               uuid.UUID  `json:"id"`
	AttemptID        uuid.UUID  `json:"attempt_id"`
	TotalScore       float64    `json:"total_score"`
	MaxPossibleScore float64    `json:"max_possible_score"`
	PassScore        float64    `json:"pass_score"`
	IsPassed         bool       `json:"is_passed"`
	IsPublished      bool       `json:"is_published"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	PublishedBy      *int       `json:"published_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// BulkPublishOutcome reports the per-item tolerant result of a bulk publish.
type BulkPublishOutcome struct {
	Published int                  `json:"published"`
	Skipped   []BulkPublishSkipped `json:"skipped,omitempty"`
}

// BulkPublishSkipped names one result that could not be published and why.
type BulkPublishSkipped struct {
	ResultID uuid.UUID `json:"result_id"`
	Reason   string    `json:"reason"`
}
