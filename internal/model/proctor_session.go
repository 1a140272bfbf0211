package model

import (
	"time"

	"github.com/google/uuid"
)

// ProctorStatus enumerates proctoring session states.
type ProctorStatus string

const (
	ProctorStatusActive    ProctorStatus = "ACTIVE"
	ProctorStatusCompleted ProctorStatus = "COMPLETED"
)

// ProctorSession links a proctoring stream to an attempt. The expiry
// scanner closes any still-active session when its attempt expires.
type ProctorSession struct {
	ID        uuid.UUID     `json:"id"`
	AttemptID uuid.UUID     `json:"attempt_id"`
	Status    ProctorStatus `json:"status"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   *time.Time    `json:"ended_at,omitempty"`
}
