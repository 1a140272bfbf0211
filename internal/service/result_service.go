package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/provexa/provexa-backend/internal/model"
	"github.com/provexa/provexa-backend/internal/repository"
)

// CandidateResult is the published outcome as the candidate sees it,
// with the per-question breakdown attached.
type CandidateResult struct {
	Result    *model.Result        `json:"result"`
	Breakdown []model.GradedAnswer `json:"breakdown,omitempty"`
}

// ResultService controls result visibility. Results exist as soon as
// grading completes but stay invisible to candidates until published.
type ResultService struct {
	results  *repository.ResultRepository
	attempts *repository.AttemptRepository
	sessions *repository.GradingRepository
	clock    Clock
	log      zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(
	results *repository.ResultRepository,
	attempts *repository.AttemptRepository,
	sessions *repository.GradingRepository,
	log zerolog.Logger,
) *ResultService {
	return &ResultService{
		results:  results,
		attempts: attempts,
		sessions: sessions,
		clock:    time.Now,
		log:      log.With().Str("component", "result_service").Logger(),
	}
}

// Publish makes one result visible to its candidate.
func (s *ResultService) Publish(ctx context.Context, adminID int, resultID uuid.UUID) (*model.Result, error) {
	return s.setPublished(ctx, adminID, resultID, true)
}

// Unpublish withdraws a result from candidate view, for corrections.
func (s *ResultService) Unpublish(ctx context.Context, adminID int, resultID uuid.UUID) (*model.Result, error) {
	return s.setPublished(ctx, adminID, resultID, false)
}

func (s *ResultService) setPublished(ctx context.Context, adminID int, resultID uuid.UUID, published bool) (*model.Result, error) {
	res, err := s.results.GetByID(ctx, resultID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("load result: %w", err)
	}

	var by *int
	var at *time.Time
	if published {
		now := s.clock()
		by, at = &adminID, &now
	}
	if _, err := s.results.SetPublished(ctx, resultID, published, by, at); err != nil {
		return nil, fmt.Errorf("set published: %w", err)
	}
	res.IsPublished = published
	res.PublishedBy = by
	res.PublishedAt = at

	s.log.Info().
		Str("result_id", resultID.String()).
		Int("admin_id", adminID).
		Bool("published", published).
		Msg("result visibility changed")
	return res, nil
}

// BulkPublish publishes every finalized result of an exam, skipping
// attempts whose grading has not completed and reporting each skip.
func (s *ResultService) BulkPublish(ctx context.Context, adminID int, examID uuid.UUID) (*model.BulkPublishOutcome, error) {
	results, err := s.results.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	now := s.clock()
	outcome := &model.BulkPublishOutcome{}
	for _, res := range results {
		if res.IsPublished {
			continue
		}
		session, err := s.sessions.GetSessionByAttempt(ctx, res.AttemptID)
		if err == nil && session.ManualGradingRequired > 0 {
			outcome.Skipped = append(outcome.Skipped, model.BulkPublishSkipped{
				ResultID: res.ID,
				Reason:   "manual grading items are still pending",
			})
			continue
		}
		if _, err := s.results.SetPublished(ctx, res.ID, true, &adminID, &now); err != nil {
			s.log.Error().Err(err).Str("result_id", res.ID.String()).Msg("bulk publish result")
			outcome.Skipped = append(outcome.Skipped, model.BulkPublishSkipped{
				ResultID: res.ID,
				Reason:   "publish failed",
			})
			continue
		}
		outcome.Published++
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Int("admin_id", adminID).
		Int("published", outcome.Published).
		Int("skipped", len(outcome.Skipped)).
		Msg("bulk publish finished")
	return outcome, nil
}

// ForCandidate returns the candidate's own result, with breakdown, only
// once it is published.
func (s *ResultService) ForCandidate(ctx context.Context, candidateID int, attemptID uuid.UUID) (*CandidateResult, error) {
	a, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}
	if a.CandidateID != candidateID {
		return nil, ErrAttemptNotFound
	}

	res, err := s.results.GetByAttempt(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultNotPublished
		}
		return nil, fmt.Errorf("load result: %w", err)
	}
	if !res.IsPublished {
		return nil, ErrResultNotPublished
	}

	out := &CandidateResult{Result: res}
	if session, err := s.sessions.GetSessionByAttempt(ctx, attemptID); err == nil {
		if breakdown, err := s.sessions.ListGradedAnswers(ctx, session.ID); err == nil {
			out.Breakdown = breakdown
		}
	}
	return out, nil
}

// ListByExam returns all results of an exam for the admin view.
func (s *ResultService) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Result, error) {
	return s.results.ListByExam(ctx, examID)
}
