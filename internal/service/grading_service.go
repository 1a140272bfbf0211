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
	"github.com/provexa/provexa-backend/internal/scoring"
)

// BulkGradeFailure names one question in a bulk manual grade that was
// rejected.
type BulkGradeFailure struct {
	QuestionID uuid.UUID `json:"question_id"`
	Reason     string    `json:"reason"`
}

// BulkGradeOutcome reports the per-item tolerant result of a bulk manual
// grade, with the session totals after the batch.
type BulkGradeOutcome struct {
	Graded  int                   `json:"graded"`
	Failed  []BulkGradeFailure    `json:"failed,omitempty"`
	Session *model.GradingSession `json:"session"`
}

// RegradeOutcome reports a regrade's effect on one question and on the
// attempt's final numbers.
type RegradeOutcome struct {
	QuestionID    uuid.UUID `json:"question_id"`
	PreviousScore float64   `json:"previous_score"`
	NewScore      float64   `json:"new_score"`
	PreviousTotal float64   `json:"previous_total"`
	NewTotal      float64   `json:"new_total"`
	IsPassed      bool      `json:"is_passed"`
}

// GradingService computes and maintains scores for closed attempts. Auto
// grading runs once per attempt; manual grading and regrades mutate the
// graded answers, and session totals are always recomputed from the rows
// rather than adjusted incrementally.
type GradingService struct {
	grading *GradingDeps
	clock   Clock
	log     zerolog.Logger
}

// GradingDeps groups the repositories the grading flows touch.
type GradingDeps struct {
	Sessions  *repository.GradingRepository
	Attempts  *repository.AttemptRepository
	Answers   *repository.AttemptAnswerRepository
	Questions *repository.QuestionRepository
	Exams     *repository.ExamRepository
	Results   *repository.ResultRepository
}

// NewGradingService creates a new GradingService.
func NewGradingService(deps *GradingDeps, log zerolog.Logger) *GradingService {
	return &GradingService{
		grading: deps,
		clock:   time.Now,
		log:     log.With().Str("component", "grading_service").Logger(),
	}
}

// Initiate auto-grades a closed attempt and opens its grading session.
// Repeat calls are idempotent: the existing session is returned untouched.
// When nothing needs a human, the session completes immediately and the
// result snapshot is written.
func (s *GradingService) Initiate(ctx context.Context, attemptID uuid.UUID) (*model.GradingSession, error) {
	a, err := s.grading.Attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}
	switch a.Status {
	case model.AttemptStatusSubmitted, model.AttemptStatusExpired:
	default:
		return nil, ErrAttemptNotGradable
	}

	exam, err := s.grading.Exams.GetByID(ctx, a.ExamID)
	if err != nil {
		return nil, fmt.Errorf("load exam: %w", err)
	}
	snapshot, err := s.grading.Attempts.GetSnapshot(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	maxPossible := 0.0
	for _, q := range snapshot {
		maxPossible += q.Points
	}

	session := &model.GradingSession{
		ID:               uuid.New(),
		AttemptID:        a.ID,
		Status:           model.GradingStatusInProgress,
		MaxPossibleScore: maxPossible,
		PassScore:        exam.PassScore,
	}
	if err := s.grading.Sessions.CreateSession(ctx, session); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Already graded, or a concurrent initiate won.
			return s.grading.Sessions.GetSessionByAttempt(ctx, a.ID)
		}
		return nil, fmt.Errorf("create grading session: %w", err)
	}

	graded, mirror, err := s.autoGrade(ctx, a, session.ID, snapshot)
	if err != nil {
		return nil, err
	}
	if err := s.grading.Sessions.InsertGradedAnswers(ctx, graded); err != nil {
		return nil, fmt.Errorf("insert graded answers: %w", err)
	}
	if err := s.grading.Answers.ApplyGrades(ctx, a.ID, mirror); err != nil {
		return nil, fmt.Errorf("mirror grades: %w", err)
	}

	recomputed, err := s.grading.Sessions.RecomputeAggregates(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("recompute totals: %w", err)
	}

	s.log.Info().
		Str("attempt_id", a.ID.String()).
		Str("session_id", recomputed.ID.String()).
		Float64("total_score", recomputed.TotalScore).
		Int("manual_pending", recomputed.ManualGradingRequired).
		Msg("attempt auto-graded")

	if recomputed.ManualGradingRequired == 0 {
		return s.Complete(ctx, recomputed.ID, false)
	}
	return recomputed, nil
}

// autoGrade scores every snapshot question and prepares both the graded
// answer rows and the mirror updates for the answer table.
func (s *GradingService) autoGrade(
	ctx context.Context,
	a *model.Attempt,
	sessionID uuid.UUID,
	snapshot []model.AttemptQuestion,
) ([]model.GradedAnswer, []repository.GradedOutcome, error) {
	questions, err := s.grading.Questions.ListByExam(ctx, a.ExamID)
	if err != nil {
		return nil, nil, fmt.Errorf("load questions: %w", err)
	}
	byID := make(map[uuid.UUID]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	answers, err := s.grading.Answers.ListByAttempt(ctx, a.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load answers: %w", err)
	}
	answered := make(map[uuid.UUID]model.AttemptAnswer, len(answers))
	for _, ans := range answers {
		answered[ans.QuestionID] = ans
	}

	graded := make([]model.GradedAnswer, 0, len(snapshot))
	mirror := make([]repository.GradedOutcome, 0, len(answers))
	for _, item := range snapshot {
		var candidateAnswer scoring.Answer
		ans, hasAnswer := answered[item.QuestionID]
		if hasAnswer {
			candidateAnswer = scoring.Answer{
				SelectedOptionIDs: ans.SelectedOptionIDs,
				Text:              ans.TextAnswer,
			}
		}

		var outcome scoring.Outcome
		q, known := byID[item.QuestionID]
		if known {
			outcome = scoring.Score(item.QuestionType, q.AnswerKey, candidateAnswer, item.Points)
		} else {
			// The question was removed from the exam after the snapshot
			// froze. A grader has to decide what it is worth.
			outcome = scoring.Outcome{Answered: hasAnswer, RequiresManual: true, Reason: scoring.ReasonManual}
		}

		isCorrect := outcome.IsCorrect
		if isCorrect == nil && !outcome.RequiresManual && outcome.Reason != scoring.ReasonMalformedKey {
			// Unanswered auto-gradable questions score zero, no human needed.
			wrong := false
			isCorrect = &wrong
		}

		graded = append(graded, model.GradedAnswer{
			ID:               uuid.New(),
			GradingSessionID: sessionID,
			QuestionID:       item.QuestionID,
			Score:            outcome.Score,
			MaxScore:         item.Points,
			IsCorrect:        isCorrect,
		})
		if hasAnswer {
			mirror = append(mirror, repository.GradedOutcome{
				QuestionID: item.QuestionID,
				IsCorrect:  isCorrect,
				Score:      outcome.Score,
			})
		}
	}
	return graded, mirror, nil
}

// ManualGrade records a grader's score for one question. Only open
// sessions accept manual grades; completed sessions change through
// Regrade, which leaves an audit trail.
func (s *GradingService) ManualGrade(ctx context.Context, graderID int, sessionID uuid.UUID, req *model.ManualGradeRequest) (*model.GradingSession, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.GradingStatusCompleted {
		return nil, ErrConflict
	}

	if err := s.applyGrade(ctx, session, req.QuestionID, req.Score, req.IsCorrect, optional(req.Comment)); err != nil {
		return nil, err
	}

	recomputed, err := s.grading.Sessions.RecomputeAggregates(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("recompute totals: %w", err)
	}

	s.log.Info().
		Str("session_id", sessionID.String()).
		Str("question_id", req.QuestionID.String()).
		Int("grader_id", graderID).
		Float64("score", req.Score).
		Msg("manual grade recorded")
	return recomputed, nil
}

// BulkManualGrade records a batch of manual grades, continuing past
// per-question failures, and recomputes totals once at the end.
func (s *GradingService) BulkManualGrade(ctx context.Context, graderID int, sessionID uuid.UUID, req *model.BulkManualGradeRequest) (*BulkGradeOutcome, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.GradingStatusCompleted {
		return nil, ErrConflict
	}

	outcome := &BulkGradeOutcome{}
	for _, item := range req.Grades {
		if err := s.applyGrade(ctx, session, item.QuestionID, item.Score, item.IsCorrect, optional(item.Comment)); err != nil {
			outcome.Failed = append(outcome.Failed, BulkGradeFailure{
				QuestionID: item.QuestionID,
				Reason:     gradeFailureReason(err),
			})
			continue
		}
		outcome.Graded++
	}

	recomputed, err := s.grading.Sessions.RecomputeAggregates(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("recompute totals: %w", err)
	}
	outcome.Session = recomputed

	s.log.Info().
		Str("session_id", sessionID.String()).
		Int("grader_id", graderID).
		Int("graded", outcome.Graded).
		Int("failed", len(outcome.Failed)).
		Msg("bulk manual grade recorded")
	return outcome, nil
}

// Complete closes a grading session, mirrors the final numbers onto the
// attempt, and writes the unpublished result snapshot. Unless forced, it
// refuses while manual items are pending.
func (s *GradingService) Complete(ctx context.Context, sessionID uuid.UUID, force bool) (*model.GradingSession, error) {
	now := s.clock()

	completed, err := s.grading.Sessions.CompleteSession(ctx, sessionID, force, now)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("complete session: %w", err)
		}
		// The conditional update matched nothing: either the session is
		// already complete (idempotent success) or manual items remain.
		session, gerr := s.getSession(ctx, sessionID)
		if gerr != nil {
			return nil, gerr
		}
		if session.Status == model.GradingStatusCompleted {
			return session, nil
		}
		return nil, ErrManualItemsPending
	}

	passed := completed.TotalScore >= completed.PassScore
	if err := s.grading.Attempts.UpdateScore(ctx, completed.AttemptID, completed.TotalScore, passed); err != nil {
		return nil, fmt.Errorf("update attempt score: %w", err)
	}

	result := &model.Result{
		ID:               uuid.New(),
		AttemptID:        completed.AttemptID,
		TotalScore:       completed.TotalScore,
		MaxPossibleScore: completed.MaxPossibleScore,
		PassScore:        completed.PassScore,
		IsPassed:         passed,
	}
	if err := s.grading.Results.Create(ctx, result); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("create result: %w", err)
	}

	s.log.Info().
		Str("session_id", completed.ID.String()).
		Str("attempt_id", completed.AttemptID.String()).
		Float64("total_score", completed.TotalScore).
		Bool("is_passed", passed).
		Msg("grading completed")
	return completed, nil
}

// Regrade corrects one graded answer after completion. The change is
// logged to the insert-only regrade trail and the attempt's and result's
// numbers are recomputed and rewritten.
func (s *GradingService) Regrade(ctx context.Context, graderID int, sessionID uuid.UUID, req *model.RegradeRequest) (*RegradeOutcome, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.GradingStatusCompleted {
		return nil, ErrGradingNotComplete
	}

	previous, err := s.grading.Sessions.GetGradedAnswer(ctx, sessionID, req.QuestionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotInAttempt
		}
		return nil, fmt.Errorf("load graded answer: %w", err)
	}

	if err := s.applyGrade(ctx, session, req.QuestionID, req.NewScore, req.IsCorrect, nil); err != nil {
		return nil, err
	}
	if err := s.grading.Sessions.InsertRegradeLog(ctx, &model.RegradeLogEntry{
		GradingSessionID: sessionID,
		QuestionID:       req.QuestionID,
		PreviousScore:    previous.Score,
		NewScore:         req.NewScore,
		Reason:           req.Reason,
		GradedBy:         graderID,
	}); err != nil {
		return nil, fmt.Errorf("log regrade: %w", err)
	}

	recomputed, err := s.grading.Sessions.RecomputeAggregates(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("recompute totals: %w", err)
	}

	passed := recomputed.TotalScore >= recomputed.PassScore
	if err := s.grading.Attempts.UpdateScore(ctx, recomputed.AttemptID, recomputed.TotalScore, passed); err != nil {
		return nil, fmt.Errorf("update attempt score: %w", err)
	}
	if _, err := s.grading.Results.UpdateScores(ctx, recomputed.AttemptID, recomputed.TotalScore, passed); err != nil {
		return nil, fmt.Errorf("update result: %w", err)
	}

	s.log.Info().
		Str("session_id", sessionID.String()).
		Str("question_id", req.QuestionID.String()).
		Int("grader_id", graderID).
		Float64("previous_score", previous.Score).
		Float64("new_score", req.NewScore).
		Msg("answer regraded")

	return &RegradeOutcome{
		QuestionID:    req.QuestionID,
		PreviousScore: previous.Score,
		NewScore:      req.NewScore,
		PreviousTotal: session.TotalScore,
		NewTotal:      recomputed.TotalScore,
		IsPassed:      passed,
	}, nil
}

// Session retrieves one grading session.
func (s *GradingService) Session(ctx context.Context, sessionID uuid.UUID) (*model.GradingSession, error) {
	return s.getSession(ctx, sessionID)
}

// SessionByAttempt retrieves the grading session for an attempt.
func (s *GradingService) SessionByAttempt(ctx context.Context, attemptID uuid.UUID) (*model.GradingSession, error) {
	session, err := s.grading.Sessions.GetSessionByAttempt(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load grading session: %w", err)
	}
	return session, nil
}

// GradedAnswers lists the per-question outcomes of a session.
func (s *GradingService) GradedAnswers(ctx context.Context, sessionID uuid.UUID) ([]model.GradedAnswer, error) {
	if _, err := s.getSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.grading.Sessions.ListGradedAnswers(ctx, sessionID)
}

// applyGrade writes one grade in both tables, enforcing score bounds.
func (s *GradingService) applyGrade(
	ctx context.Context,
	session *model.GradingSession,
	questionID uuid.UUID,
	score float64,
	isCorrect bool,
	comment *string,
) error {
	graded, err := s.grading.Sessions.GetGradedAnswer(ctx, session.ID, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrQuestionNotInAttempt
		}
		return fmt.Errorf("load graded answer: %w", err)
	}
	if score < 0 || score > graded.MaxScore {
		return ErrScoreOutOfRange
	}

	ok, err := s.grading.Sessions.ApplyManualGrade(ctx, session.ID, questionID, score, isCorrect, comment)
	if err != nil {
		return fmt.Errorf("apply grade: %w", err)
	}
	if !ok {
		return ErrQuestionNotInAttempt
	}

	mirrorCorrect := isCorrect
	if err := s.grading.Answers.ApplyGrades(ctx, session.AttemptID, []repository.GradedOutcome{{
		QuestionID: questionID,
		IsCorrect:  &mirrorCorrect,
		Score:      score,
	}}); err != nil {
		return fmt.Errorf("mirror grade: %w", err)
	}
	return nil
}

func (s *GradingService) getSession(ctx context.Context, sessionID uuid.UUID) (*model.GradingSession, error) {
	session, err := s.grading.Sessions.GetSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load grading session: %w", err)
	}
	return session, nil
}

func gradeFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrQuestionNotInAttempt):
		return "question is not part of this session"
	case errors.Is(err, ErrScoreOutOfRange):
		return "score is outside the allowed range"
	default:
		return "grade failed"
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
