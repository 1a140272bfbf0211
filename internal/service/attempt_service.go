package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/provexa/provexa-backend/internal/config"
	"github.com/provexa/provexa-backend/internal/model"
	"github.com/provexa/provexa-backend/internal/realtime"
	"github.com/provexa/provexa-backend/internal/repository"
)

// StartAttemptOutcome is what the candidate gets back from a start call:
// the attempt (new or resumed), the frozen paper and the exam's sitting
// rules.
type StartAttemptOutcome struct {
	Attempt          *model.Attempt               `json:"attempt"`
	Questions        []model.QuestionForCandidate `json:"questions"`
	Resumed          bool                         `json:"resumed"`
	RemainingSeconds int                          `json:"remaining_seconds"`
	Instructions     []string                     `json:"instructions"`
	MaxAttempts      int                          `json:"max_attempts"`
}

// TimerState is the server-authoritative countdown snapshot.
type TimerState struct {
	AttemptID        uuid.UUID           `json:"attempt_id"`
	Status           model.AttemptStatus `json:"status"`
	ExpiresAt        time.Time           `json:"expires_at"`
	RemainingSeconds int                 `json:"remaining_seconds"`
	IsExpired        bool                `json:"is_expired"`
	ServerTime       time.Time           `json:"server_time"`
}

// AttemptService drives the attempt lifecycle: start, resume, submit and
// the admin interventions. All terminal transitions go through the
// conditional repository update, so concurrent actors never double-close
// an attempt.
type AttemptService struct {
	cfg      *config.Config
	attempts *repository.AttemptRepository
	exams    *repository.ExamRepository
	question *repository.QuestionRepository
	events   *repository.AttemptEventRepository
	proctors *repository.ProctorSessionRepository
	hub      *realtime.Hub
	rdb      *redis.Client
	clock    Clock
	log      zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	cfg *config.Config,
	attempts *repository.AttemptRepository,
	exams *repository.ExamRepository,
	question *repository.QuestionRepository,
	events *repository.AttemptEventRepository,
	proctors *repository.ProctorSessionRepository,
	hub *realtime.Hub,
	rdb *redis.Client,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		cfg:      cfg,
		attempts: attempts,
		exams:    exams,
		question: question,
		events:   events,
		proctors: proctors,
		hub:      hub,
		rdb:      rdb,
		clock:    time.Now,
		log:      log.With().Str("component", "attempt_service").Logger(),
	}
}

// StartOrResume starts a new attempt or resumes the candidate's active
// one. The call is idempotent: while an active attempt exists, repeated
// starts return it instead of creating a sibling.
func (s *AttemptService) StartOrResume(
	ctx context.Context,
	candidateID int,
	examID uuid.UUID,
	req *model.StartAttemptRequest,
	deviceInfo, ipAddress *string,
) (*StartAttemptOutcome, error) {
	now := s.clock()

	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotAvailable
		}
		return nil, fmt.Errorf("load exam: %w", err)
	}
	if exam.Status != model.ExamStatusPublished {
		return nil, ErrExamNotAvailable
	}

	// Resume path first: an active attempt short-circuits every other
	// check, including the closed window.
	active, err := s.attempts.GetActive(ctx, examID, candidateID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("find active attempt: %w", err)
	}
	if active != nil {
		if now.After(active.ExpiresAt) {
			// The scanner has not swept this one yet. Close it here and
			// fall through to the new-attempt checks.
			if err := s.expireNow(ctx, active, now); err != nil {
				return nil, err
			}
		} else {
			return s.resume(ctx, active, exam, now)
		}
	}

	if !exam.WindowOpen(now) {
		return nil, ErrExamWindowClosed
	}
	if err := s.checkAccess(ctx, exam, candidateID, req.AccessCode); err != nil {
		return nil, err
	}

	used, err := s.attempts.CountUsed(ctx, examID, candidateID)
	if err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}
	if used >= exam.MaxAttempts {
		if err := s.consumeOverride(ctx, examID, candidateID); err != nil {
			return nil, err
		}
	}

	questions, err := s.question.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	attempt := &model.Attempt{
		ID:             uuid.New(),
		ExamID:         examID,
		CandidateID:    candidateID,
		AttemptNumber:  used + 1,
		StartedAt:      now,
		ExpiresAt:      now.Add(time.Duration(exam.DurationMinutes) * time.Minute),
		LastActivityAt: now,
		Status:         model.AttemptStatusStarted,
		ExpiryReason:   model.ExpiryReasonNone,
		DeviceInfo:     deviceInfo,
		IPAddress:      ipAddress,
	}

	snapshot := buildSnapshot(attempt.ID, questions, exam.ShuffleQuestions)

	if err := s.attempts.CreateWithSnapshot(ctx, attempt, snapshot); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// A concurrent start on another device won the insert race.
			// Resume the winner instead of failing.
			winner, aerr := s.attempts.GetActive(ctx, examID, candidateID)
			if aerr != nil {
				return nil, fmt.Errorf("recover concurrent start: %w", aerr)
			}
			return s.resume(ctx, winner, exam, now)
		}
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	s.recordEvent(ctx, attempt.ID, model.EventAttemptStarted, map[string]interface{}{
		"attempt_number": attempt.AttemptNumber,
	})

	paper, err := s.attempts.GetPaper(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("load paper: %w", err)
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Str("exam_id", examID.String()).
		Int("candidate_id", candidateID).
		Int("attempt_number", attempt.AttemptNumber).
		Msg("attempt started")

	return &StartAttemptOutcome{
		Attempt:          attempt,
		Questions:        paper,
		RemainingSeconds: attempt.RemainingSeconds(now),
		Instructions:     exam.Instructions,
		MaxAttempts:      exam.MaxAttempts,
	}, nil
}

func (s *AttemptService) resume(ctx context.Context, a *model.Attempt, exam *model.Exam, now time.Time) (*StartAttemptOutcome, error) {
	if err := s.attempts.Resume(ctx, a.ID, now); err != nil {
		return nil, fmt.Errorf("resume attempt: %w", err)
	}
	a.Status = model.AttemptStatusResumed
	a.ResumeCount++
	a.LastActivityAt = now

	s.recordEvent(ctx, a.ID, model.EventAttemptResumed, map[string]interface{}{
		"resume_count": a.ResumeCount,
	})

	paper, err := s.attempts.GetPaper(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("load paper: %w", err)
	}

	s.log.Info().
		Str("attempt_id", a.ID.String()).
		Int("resume_count", a.ResumeCount).
		Msg("attempt resumed")

	return &StartAttemptOutcome{
		Attempt:          a,
		Questions:        paper,
		Resumed:          true,
		RemainingSeconds: a.RemainingSeconds(now),
		Instructions:     exam.Instructions,
		MaxAttempts:      exam.MaxAttempts,
	}, nil
}

func (s *AttemptService) checkAccess(ctx context.Context, exam *model.Exam, candidateID int, accessCode string) error {
	switch exam.AccessMode {
	case model.AccessModeAccessCode:
		if accessCode == "" || accessCode != exam.AccessCode {
			return ErrInvalidAccessCode
		}
	case model.AccessModeAssigned:
		assigned, err := s.exams.IsAssigned(ctx, exam.ID, candidateID)
		if err != nil {
			return fmt.Errorf("check assignment: %w", err)
		}
		if !assigned {
			return ErrExamNotAvailable
		}
	}
	return nil
}

func (s *AttemptService) consumeOverride(ctx context.Context, examID uuid.UUID, candidateID int) error {
	override, err := s.attempts.GetOverride(ctx, examID, candidateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAttemptLimitExceeded
		}
		return fmt.Errorf("load override: %w", err)
	}
	ok, err := s.attempts.ConsumeOverride(ctx, override.ID)
	if err != nil {
		return fmt.Errorf("consume override: %w", err)
	}
	if !ok {
		return ErrAttemptLimitExceeded
	}
	return nil
}

// Submit closes the attempt as SUBMITTED and queues it for grading. If
// the timer already lapsed the attempt is expired instead and the
// submission is rejected, keeping the server the sole timeout authority.
func (s *AttemptService) Submit(ctx context.Context, candidateID int, attemptID uuid.UUID) (*model.Attempt, error) {
	now := s.clock()

	a, err := s.getOwned(ctx, candidateID, attemptID)
	if err != nil {
		return nil, err
	}
	if a.Status.IsTerminal() {
		return nil, ErrAttemptNotActive
	}
	if now.After(a.ExpiresAt) {
		if err := s.expireNow(ctx, a, now); err != nil {
			return nil, err
		}
		return nil, ErrAttemptExpired
	}

	ok, err := s.attempts.TransitionTerminal(ctx, a.ID, model.AttemptStatusSubmitted, model.ExpiryReasonNone, &now, nil)
	if err != nil {
		return nil, fmt.Errorf("submit attempt: %w", err)
	}
	if !ok {
		return nil, ErrAttemptNotActive
	}
	a.Status = model.AttemptStatusSubmitted
	a.SubmittedAt = &now

	s.recordEvent(ctx, a.ID, model.EventSubmitted, nil)
	s.closeProctoring(ctx, a.ID, now)
	s.enqueueGrading(ctx, a.ID)
	s.publishMonitor(ctx, a, "submitted")

	s.log.Info().Str("attempt_id", a.ID.String()).Msg("attempt submitted")
	return a, nil
}

// ForceSubmit is the proctor intervention: the attempt closes as
// SUBMITTED with whatever answers exist and still gets graded.
func (s *AttemptService) ForceSubmit(ctx context.Context, adminID int, attemptID uuid.UUID, reason string) (*model.Attempt, error) {
	now := s.clock()

	a, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}

	ok, err := s.attempts.TransitionTerminal(ctx, a.ID, model.AttemptStatusSubmitted, model.ExpiryReasonForceSubmitted, &now, &adminID)
	if err != nil {
		return nil, fmt.Errorf("force submit: %w", err)
	}
	if !ok {
		return nil, ErrAttemptNotActive
	}
	a.Status = model.AttemptStatusSubmitted
	a.ExpiryReason = model.ExpiryReasonForceSubmitted
	a.SubmittedAt = &now
	a.ForceSubmittedBy = &adminID
	a.ForceSubmittedAt = &now

	s.recordEvent(ctx, a.ID, model.EventForceSubmitted, map[string]interface{}{
		"admin_id": adminID,
		"reason":   reason,
	})
	s.closeProctoring(ctx, a.ID, now)
	s.hub.NotifyExpiry(a.ID, realtime.EventTerminated, string(model.ExpiryReasonForceSubmitted),
		"Your attempt was submitted by a proctor.")
	s.enqueueGrading(ctx, a.ID)
	s.publishMonitor(ctx, a, "force_submitted")

	s.log.Info().
		Str("attempt_id", a.ID.String()).
		Int("admin_id", adminID).
		Msg("attempt force submitted")
	return a, nil
}

// Cancel voids an attempt. Cancelled attempts are never graded and do
// not count against the candidate's attempt limit.
func (s *AttemptService) Cancel(ctx context.Context, adminID int, attemptID uuid.UUID, reason string) (*model.Attempt, error) {
	now := s.clock()

	a, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}

	ok, err := s.attempts.TransitionTerminal(ctx, a.ID, model.AttemptStatusCancelled, model.ExpiryReasonManuallyCancelled, nil, &adminID)
	if err != nil {
		return nil, fmt.Errorf("cancel attempt: %w", err)
	}
	if !ok {
		return nil, ErrAttemptNotActive
	}
	a.Status = model.AttemptStatusCancelled
	a.ExpiryReason = model.ExpiryReasonManuallyCancelled

	s.recordEvent(ctx, a.ID, model.EventCancelled, map[string]interface{}{
		"admin_id": adminID,
		"reason":   reason,
	})
	s.closeProctoring(ctx, a.ID, now)
	s.hub.NotifyExpiry(a.ID, realtime.EventTerminated, string(model.ExpiryReasonManuallyCancelled),
		"Your attempt was cancelled by a proctor.")
	s.publishMonitor(ctx, a, "cancelled")

	s.log.Info().
		Str("attempt_id", a.ID.String()).
		Int("admin_id", adminID).
		Msg("attempt cancelled")
	return a, nil
}

// ExtendTime grants extra minutes to a running attempt and pushes the
// new deadline to the candidate's live connection.
func (s *AttemptService) ExtendTime(ctx context.Context, adminID int, attemptID uuid.UUID, extraMinutes int) (*model.Attempt, error) {
	now := s.clock()

	a, err := s.attempts.ExtendTime(ctx, attemptID, extraMinutes*60)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotActive
		}
		return nil, fmt.Errorf("extend time: %w", err)
	}

	s.recordEvent(ctx, a.ID, model.EventTimeExtended, map[string]interface{}{
		"admin_id":      adminID,
		"extra_minutes": extraMinutes,
	})
	s.hub.NotifyTimeExtended(a.ID, extraMinutes, a.RemainingSeconds(now))

	s.log.Info().
		Str("attempt_id", a.ID.String()).
		Int("admin_id", adminID).
		Int("extra_minutes", extraMinutes).
		Msg("attempt time extended")
	return a, nil
}

// Warn pushes a proctoring warning to the candidate's live connection
// and records it on the attempt log. Warnings never touch attempt state.
func (s *AttemptService) Warn(ctx context.Context, adminID int, attemptID uuid.UUID, message string) error {
	a, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAttemptNotFound
		}
		return fmt.Errorf("load attempt: %w", err)
	}
	if a.Status.IsTerminal() {
		return ErrAttemptNotActive
	}

	s.recordEvent(ctx, a.ID, model.EventWarningIssued, map[string]interface{}{
		"admin_id": adminID,
		"message":  message,
	})
	s.hub.NotifyWarning(a.ID, message)

	s.log.Info().
		Str("attempt_id", a.ID.String()).
		Int("admin_id", adminID).
		Msg("warning issued")
	return nil
}

// OpenProctoring records the start of a proctored stream for an active
// attempt. While a session is still active, reconnects reuse it instead
// of opening a sibling.
func (s *AttemptService) OpenProctoring(ctx context.Context, candidateID int, attemptID uuid.UUID) (*model.ProctorSession, error) {
	a, err := s.getOwned(ctx, candidateID, attemptID)
	if err != nil {
		return nil, err
	}
	if a.Status.IsTerminal() {
		return nil, ErrAttemptNotActive
	}

	ps := &model.ProctorSession{
		ID:        uuid.New(),
		AttemptID: a.ID,
		Status:    model.ProctorStatusActive,
	}
	err = s.proctors.Create(ctx, ps)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the insert to an already-active session. Reuse it.
		return s.proctors.GetActiveByAttempt(ctx, a.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("open proctoring: %w", err)
	}

	s.recordEvent(ctx, a.ID, model.EventProctorOpened, map[string]interface{}{
		"session_id": ps.ID.String(),
	})
	return ps, nil
}

// Timer returns the server-authoritative countdown for polling clients.
func (s *AttemptService) Timer(ctx context.Context, candidateID int, attemptID uuid.UUID) (*TimerState, error) {
	now := s.clock()

	a, err := s.getOwned(ctx, candidateID, attemptID)
	if err != nil {
		return nil, err
	}
	return &TimerState{
		AttemptID:        a.ID,
		Status:           a.Status,
		ExpiresAt:        a.ExpiresAt,
		RemainingSeconds: a.RemainingSeconds(now),
		IsExpired:        a.Status == model.AttemptStatusExpired || now.After(a.ExpiresAt),
		ServerTime:       now,
	}, nil
}

// Paper returns the frozen question snapshot for an active attempt.
func (s *AttemptService) Paper(ctx context.Context, candidateID int, attemptID uuid.UUID) ([]model.QuestionForCandidate, error) {
	a, err := s.getOwned(ctx, candidateID, attemptID)
	if err != nil {
		return nil, err
	}
	if a.Status.IsTerminal() {
		return nil, ErrAttemptNotActive
	}
	return s.attempts.GetPaper(ctx, a.ID)
}

// Get loads an attempt without an ownership check, for admin use.
func (s *AttemptService) Get(ctx context.Context, attemptID uuid.UUID) (*model.Attempt, error) {
	a, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}
	return a, nil
}

// ListByExam returns the admin attempt listing for one exam.
func (s *AttemptService) ListByExam(ctx context.Context, examID uuid.UUID, page, perPage int) ([]repository.AttemptSummary, int64, error) {
	return s.attempts.ListByExam(ctx, examID, page, perPage)
}

// Events returns the append-only event log of an attempt.
func (s *AttemptService) Events(ctx context.Context, attemptID uuid.UUID) ([]model.AttemptEvent, error) {
	return s.events.ListByAttempt(ctx, attemptID)
}

// RecordActivity logs a proctoring signal (tab switch, navigation) and
// refreshes last_activity_at so expiry classification stays accurate.
func (s *AttemptService) RecordActivity(ctx context.Context, candidateID int, attemptID uuid.UUID, eventType model.AttemptEventType, payload map[string]interface{}) error {
	now := s.clock()

	a, err := s.getOwned(ctx, candidateID, attemptID)
	if err != nil {
		return err
	}
	if a.Status.IsTerminal() {
		return ErrAttemptNotActive
	}
	if err := s.attempts.TouchActivity(ctx, a.ID, now); err != nil {
		return fmt.Errorf("touch activity: %w", err)
	}
	s.recordEvent(ctx, a.ID, eventType, payload)
	return nil
}

// Heartbeat refreshes last_activity_at for a live connection without
// logging an event. Expiry classification depends on this signal.
func (s *AttemptService) Heartbeat(ctx context.Context, candidateID int, attemptID uuid.UUID) error {
	a, err := s.getOwned(ctx, candidateID, attemptID)
	if err != nil {
		return err
	}
	if a.Status.IsTerminal() {
		return ErrAttemptNotActive
	}
	return s.attempts.TouchActivity(ctx, a.ID, s.clock())
}

// expireNow closes a single overdue attempt outside the scanner sweep.
// The conditional transition makes losing a race with the scanner a no-op.
func (s *AttemptService) expireNow(ctx context.Context, a *model.Attempt, now time.Time) error {
	reason := a.ClassifyExpiry(s.cfg.ActivityGrace)
	ok, err := s.attempts.TransitionTerminal(ctx, a.ID, model.AttemptStatusExpired, reason, &now, nil)
	if err != nil {
		return fmt.Errorf("expire attempt: %w", err)
	}
	if ok {
		a.Status = model.AttemptStatusExpired
		a.ExpiryReason = reason
		s.recordEvent(ctx, a.ID, model.EventTimedOut, map[string]interface{}{
			"reason": string(reason),
		})
		s.closeProctoring(ctx, a.ID, now)
		s.hub.NotifyExpiry(a.ID, realtime.EventAttemptExpired, string(reason), "Time is up. Your attempt has been closed.")
		s.enqueueGrading(ctx, a.ID)
		s.publishMonitor(ctx, a, "expired")
	}
	return nil
}

// getOwned loads an attempt and verifies the candidate owns it. A foreign
// attempt reads as not found, never as forbidden.
func (s *AttemptService) getOwned(ctx context.Context, candidateID int, attemptID uuid.UUID) (*model.Attempt, error) {
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
	return a, nil
}

func (s *AttemptService) recordEvent(ctx context.Context, attemptID uuid.UUID, eventType model.AttemptEventType, payload map[string]interface{}) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			s.log.Error().Err(err).Msg("marshal event payload")
			return
		}
		raw = b
	}
	if err := s.events.Insert(ctx, &model.AttemptEvent{
		AttemptID: attemptID,
		EventType: eventType,
		Payload:   raw,
		CreatedAt: s.clock(),
	}); err != nil {
		s.log.Error().Err(err).
			Str("attempt_id", attemptID.String()).
			Str("event_type", string(eventType)).
			Msg("record attempt event")
	}
}

func (s *AttemptService) closeProctoring(ctx context.Context, attemptID uuid.UUID, now time.Time) {
	if err := s.proctors.CloseActiveByAttempt(ctx, attemptID, now); err != nil {
		s.log.Error().Err(err).
			Str("attempt_id", attemptID.String()).
			Msg("close proctor session")
	}
}

// enqueueGrading pushes the attempt onto the grading queue. Best effort:
// a Redis hiccup is logged and the attempt can be graded on demand later.
func (s *AttemptService) enqueueGrading(ctx context.Context, attemptID uuid.UUID) {
	if err := s.rdb.RPush(ctx, config.WorkerKey.GradeAttemptsQueue, attemptID.String()).Err(); err != nil {
		s.log.Error().Err(err).
			Str("attempt_id", attemptID.String()).
			Msg("enqueue grading")
	}
}

// publishMonitor fans the lifecycle change out to the exam's live
// monitor channel for proctor dashboards.
func (s *AttemptService) publishMonitor(ctx context.Context, a *model.Attempt, event string) {
	payload, err := json.Marshal(map[string]interface{}{
		"event":        event,
		"attempt_id":   a.ID.String(),
		"candidate_id": a.CandidateID,
		"status":       a.Status,
	})
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.ExamMonitorChannel(a.ExamID.String()), payload).Err(); err != nil {
		s.log.Debug().Err(err).Msg("publish monitor event")
	}
}

// buildSnapshot freezes the exam's questions into the attempt, optionally
// shuffling presentation order. Points and type are copied so later exam
// edits cannot touch a running attempt.
func buildSnapshot(attemptID uuid.UUID, questions []model.Question, shuffle bool) []model.AttemptQuestion {
	ordered := make([]model.Question, len(questions))
	copy(ordered, questions)
	if shuffle {
		rand.Shuffle(len(ordered), func(i, j int) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		})
	}

	snapshot := make([]model.AttemptQuestion, 0, len(ordered))
	for i, q := range ordered {
		snapshot = append(snapshot, model.AttemptQuestion{
			ID:           uuid.New(),
			AttemptID:    attemptID,
			QuestionID:   q.ID,
			QuestionType: q.QuestionType,
			OrderNum:     i + 1,
			Points:       q.Points,
		})
	}
	return snapshot
}
