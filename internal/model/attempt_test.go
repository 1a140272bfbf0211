package model

import (
	"testing"
	"time"
)

func TestClassifyExpiry(t *testing.T) {
	grace := 5 * time.Minute
	expiresAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		lastActivity time.Time
		want         ExpiryReason
	}{
		{
			name:         "active until the deadline",
			lastActivity: expiresAt.Add(-30 * time.Second),
			want:         ExpiryReasonTimerActive,
		},
		{
			name:         "active exactly at the grace boundary",
			lastActivity: expiresAt.Add(-grace),
			want:         ExpiryReasonTimerActive,
		},
		{
			name:         "went silent just past the grace boundary",
			lastActivity: expiresAt.Add(-grace - time.Second),
			want:         ExpiryReasonTimerDisconnected,
		},
		{
			name:         "disconnected long before the deadline",
			lastActivity: expiresAt.Add(-2 * time.Hour),
			want:         ExpiryReasonTimerDisconnected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Attempt{ExpiresAt: expiresAt, LastActivityAt: tt.lastActivity}
			if got := a.ClassifyExpiry(grace); got != tt.want {
				t.Errorf("ClassifyExpiry() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRemainingSeconds(t *testing.T) {
	expiresAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	a := &Attempt{ExpiresAt: expiresAt}

	if got := a.RemainingSeconds(expiresAt.Add(-90 * time.Second)); got != 90 {
		t.Errorf("RemainingSeconds before deadline = %d, want 90", got)
	}
	if got := a.RemainingSeconds(expiresAt); got != 0 {
		t.Errorf("RemainingSeconds at deadline = %d, want 0", got)
	}
	if got := a.RemainingSeconds(expiresAt.Add(time.Minute)); got != 0 {
		t.Errorf("RemainingSeconds past deadline = %d, want 0", got)
	}
}

func TestAttemptStatusIsTerminal(t *testing.T) {
	terminal := []AttemptStatus{AttemptStatusSubmitted, AttemptStatusExpired, AttemptStatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range ActiveAttemptStatuses {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestExamWindowOpen(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		exam Exam
		now  time.Time
		want bool
	}{
		{"inside window", Exam{WindowStart: &start, WindowEnd: &end}, start.Add(time.Hour), true},
		{"before window", Exam{WindowStart: &start, WindowEnd: &end}, start.Add(-time.Minute), false},
		{"after window", Exam{WindowStart: &start, WindowEnd: &end}, end.Add(time.Minute), false},
		{"no bounds", Exam{}, time.Now(), true},
		{"only lower bound", Exam{WindowStart: &start}, start.Add(time.Hour), true},
		{"only upper bound passed", Exam{WindowEnd: &end}, end.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.exam.WindowOpen(tt.now); got != tt.want {
				t.Errorf("WindowOpen() = %v, want %v", got, tt.want)
			}
		})
	}
}
