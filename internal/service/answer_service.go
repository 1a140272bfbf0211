package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/provexa/provexa-backend/internal/model"
	"github.com/provexa/provexa-backend/internal/repository"
)

// BulkSaveFailure names one answer in a bulk save that was rejected.
type BulkSaveFailure struct {
	QuestionID uuid.UUID `json:"question_id"`
	Reason     string    `json:"reason"`
}

// BulkSaveOutcome reports the per-item tolerant result of a bulk save.
type BulkSaveOutcome struct {
	Saved  int               `json:"saved"`
	Failed []BulkSaveFailure `json:"failed,omitempty"`
}

// AnswerService records candidate answers. Every write re-validates the
// attempt's deadline, so an expired attempt rejects the answer even when
// the scanner has not swept it yet.
type AnswerService struct {
	attempts  *repository.AttemptRepository
	answers   *repository.AttemptAnswerRepository
	lifecycle *AttemptService
	clock     Clock
	log       zerolog.Logger
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(
	attempts *repository.AttemptRepository,
	answers *repository.AttemptAnswerRepository,
	lifecycle *AttemptService,
	log zerolog.Logger,
) *AnswerService {
	return &AnswerService{
		attempts:  attempts,
		answers:   answers,
		lifecycle: lifecycle,
		clock:     time.Now,
		log:       log.With().Str("component", "answer_service").Logger(),
	}
}

// Progress reports how much of the paper has a recorded answer.
func (s *AnswerService) Progress(ctx context.Context, attemptID uuid.UUID) (total, answered int, err error) {
	snapshot, err := s.attempts.GetSnapshot(ctx, attemptID)
	if err != nil {
		return 0, 0, fmt.Errorf("load snapshot: %w", err)
	}
	answered, err = s.answers.CountByAttempt(ctx, attemptID)
	if err != nil {
		return 0, 0, fmt.Errorf("count answers: %w", err)
	}
	return len(snapshot), answered, nil
}

// Save upserts one answer. Saving again for the same question replaces
// the previous answer and clears any stale grading marks on it.
func (s *AnswerService) Save(ctx context.Context, candidateID int, attemptID uuid.UUID, req *model.SaveAnswerRequest) (*model.AttemptAnswer, error) {
	now := s.clock()

	a, err := s.checkWritable(ctx, candidateID, attemptID, now)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.attempts.GetSnapshot(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if !snapshotContains(snapshot, req.QuestionID) {
		return nil, ErrQuestionNotInAttempt
	}

	ans := &model.AttemptAnswer{
		ID:                uuid.New(),
		AttemptID:         a.ID,
		QuestionID:        req.QuestionID,
		SelectedOptionIDs: req.SelectedOptionIDs,
		TextAnswer:        req.TextAnswer,
		AnsweredAt:        now,
	}
	if err := s.answers.Upsert(ctx, ans); err != nil {
		return nil, fmt.Errorf("save answer: %w", err)
	}

	if err := s.attempts.TouchActivity(ctx, a.ID, now); err != nil {
		s.log.Error().Err(err).Str("attempt_id", a.ID.String()).Msg("touch activity")
	}

	return ans, nil
}

// BulkSave records a batch of answers, continuing past per-question
// failures. Attempt-level problems fail the whole batch.
func (s *AnswerService) BulkSave(ctx context.Context, candidateID int, attemptID uuid.UUID, req *model.BulkSaveAnswersRequest) (*BulkSaveOutcome, error) {
	now := s.clock()

	a, err := s.checkWritable(ctx, candidateID, attemptID, now)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.attempts.GetSnapshot(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	outcome := &BulkSaveOutcome{}
	for _, item := range req.Answers {
		if !snapshotContains(snapshot, item.QuestionID) {
			outcome.Failed = append(outcome.Failed, BulkSaveFailure{
				QuestionID: item.QuestionID,
				Reason:     "question is not part of this attempt",
			})
			continue
		}
		if err := s.answers.Upsert(ctx, &model.AttemptAnswer{
			ID:                uuid.New(),
			AttemptID:         a.ID,
			QuestionID:        item.QuestionID,
			SelectedOptionIDs: item.SelectedOptionIDs,
			TextAnswer:        item.TextAnswer,
			AnsweredAt:        now,
		}); err != nil {
			s.log.Error().Err(err).
				Str("attempt_id", a.ID.String()).
				Str("question_id", item.QuestionID.String()).
				Msg("bulk save answer")
			outcome.Failed = append(outcome.Failed, BulkSaveFailure{
				QuestionID: item.QuestionID,
				Reason:     "save failed",
			})
			continue
		}
		outcome.Saved++
	}

	if outcome.Saved > 0 {
		if err := s.attempts.TouchActivity(ctx, a.ID, now); err != nil {
			s.log.Error().Err(err).Str("attempt_id", a.ID.String()).Msg("touch activity")
		}
	}
	return outcome, nil
}

// List returns the candidate's saved answers for review while the
// attempt is open.
func (s *AnswerService) List(ctx context.Context, candidateID int, attemptID uuid.UUID) ([]model.AttemptAnswer, error) {
	a, err := s.lifecycle.getOwned(ctx, candidateID, attemptID)
	if err != nil {
		return nil, err
	}
	return s.answers.ListByAttempt(ctx, a.ID)
}

// checkWritable loads the attempt and enforces the write-time deadline.
// An overdue attempt is expired on the spot and the write rejected.
func (s *AnswerService) checkWritable(ctx context.Context, candidateID int, attemptID uuid.UUID, now time.Time) (*model.Attempt, error) {
	a, err := s.lifecycle.getOwned(ctx, candidateID, attemptID)
	if err != nil {
		return nil, err
	}
	if a.Status.IsTerminal() {
		return nil, ErrAttemptNotActive
	}
	if now.After(a.ExpiresAt) {
		if err := s.lifecycle.expireNow(ctx, a, now); err != nil {
			return nil, err
		}
		return nil, ErrAttemptExpired
	}
	return a, nil
}

func snapshotContains(snapshot []model.AttemptQuestion, questionID uuid.UUID) bool {
	for _, q := range snapshot {
		if q.QuestionID == questionID {
			return true
		}
	}
	return false
}
