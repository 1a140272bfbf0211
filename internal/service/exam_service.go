package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/provexa/provexa-backend/internal/model"
	"github.com/provexa/provexa-backend/internal/repository"
)

// ExamService manages exam authoring: the exam shell, its question set,
// assignments and attempt overrides.
type ExamService struct {
	exams     *repository.ExamRepository
	questions *repository.QuestionRepository
	log       zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(exams *repository.ExamRepository, questions *repository.QuestionRepository, log zerolog.Logger) *ExamService {
	return &ExamService{
		exams:     exams,
		questions: questions,
		log:       log.With().Str("component", "exam_service").Logger(),
	}
}

// Create builds a draft exam from the request.
func (s *ExamService) Create(ctx context.Context, authorID int, req *model.CreateExamRequest) (*model.Exam, error) {
	exam := &model.Exam{
		ID:               uuid.New(),
		Title:            req.Title,
		AuthorID:         authorID,
		Status:           model.ExamStatusDraft,
		ScheduleType:     model.ScheduleType(req.ScheduleType),
		WindowStart:      req.WindowStart,
		WindowEnd:        req.WindowEnd,
		DurationMinutes:  req.DurationMinutes,
		MaxAttempts:      req.MaxAttempts,
		AccessMode:       model.AccessMode(req.AccessMode),
		AccessCode:       req.AccessCode,
		ShuffleQuestions: req.ShuffleQuestions,
		PassScore:        req.PassScore,
		Instructions:     req.Instructions,
	}
	if exam.AccessMode == model.AccessModeAccessCode && exam.AccessCode == "" {
		return nil, ErrInvalidAccessCode
	}
	if err := s.exams.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}

	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Int("author_id", authorID).
		Msg("exam created")
	return exam, nil
}

// Update applies a partial edit. Fields left empty in the request keep
// their current values.
func (s *ExamService) Update(ctx context.Context, examID uuid.UUID, req *model.UpdateExamRequest) (*model.Exam, error) {
	exam, err := s.Get(ctx, examID)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		exam.Title = req.Title
	}
	if req.WindowStart != nil {
		exam.WindowStart = req.WindowStart
	}
	if req.WindowEnd != nil {
		exam.WindowEnd = req.WindowEnd
	}
	if req.DurationMinutes != 0 {
		exam.DurationMinutes = req.DurationMinutes
	}
	if req.MaxAttempts != 0 {
		exam.MaxAttempts = req.MaxAttempts
	}
	if req.AccessCode != "" {
		exam.AccessCode = req.AccessCode
	}
	if req.ShuffleQuestions != nil {
		exam.ShuffleQuestions = *req.ShuffleQuestions
	}
	if req.PassScore != nil {
		exam.PassScore = *req.PassScore
	}
	if req.Instructions != nil {
		exam.Instructions = req.Instructions
	}

	if err := s.exams.Update(ctx, exam); err != nil {
		return nil, fmt.Errorf("update exam: %w", err)
	}
	return exam, nil
}

// Publish opens a draft exam for attempts. An exam with no questions
// cannot be published.
func (s *ExamService) Publish(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	exam, err := s.Get(ctx, examID)
	if err != nil {
		return nil, err
	}

	count, err := s.questions.CountByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	if count == 0 {
		return nil, ErrNoQuestions
	}

	ok, err := s.exams.Publish(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("publish exam: %w", err)
	}
	if !ok {
		return nil, ErrConflict
	}
	exam.Status = model.ExamStatusPublished

	s.log.Info().Str("exam_id", examID.String()).Msg("exam published")
	return exam, nil
}

// Get retrieves one exam.
func (s *ExamService) Get(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load exam: %w", err)
	}
	return exam, nil
}

// List retrieves a page of exams.
func (s *ExamService) List(ctx context.Context, page, perPage int) ([]model.Exam, int64, error) {
	return s.exams.List(ctx, page, perPage)
}

// ReplaceQuestions swaps the exam's whole question set. Running attempts
// are unaffected: their snapshots froze at start time.
func (s *ExamService) ReplaceQuestions(ctx context.Context, examID uuid.UUID, req *model.ReplaceQuestionsRequest) ([]model.Question, error) {
	if _, err := s.Get(ctx, examID); err != nil {
		return nil, err
	}

	questions := make([]model.Question, 0, len(req.Questions))
	for i, item := range req.Questions {
		orderNum := item.OrderNum
		if orderNum == 0 {
			orderNum = i + 1
		}
		questions = append(questions, model.Question{
			ID:           uuid.New(),
			ExamID:       examID,
			QuestionText: item.QuestionText,
			QuestionType: model.QuestionType(item.QuestionType),
			Options:      item.Options,
			AnswerKey:    item.AnswerKey,
			Points:       item.Points,
			OrderNum:     orderNum,
		})
	}

	if err := s.questions.ReplaceForExam(ctx, examID, questions); err != nil {
		return nil, fmt.Errorf("replace questions: %w", err)
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Int("question_count", len(questions)).
		Msg("questions replaced")
	return questions, nil
}

// Questions lists the exam's questions with answer keys, for authoring.
func (s *ExamService) Questions(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	if _, err := s.Get(ctx, examID); err != nil {
		return nil, err
	}
	return s.questions.ListByExam(ctx, examID)
}

// Assign grants one candidate access to an ASSIGNED exam.
func (s *ExamService) Assign(ctx context.Context, examID uuid.UUID, candidateID int) error {
	if _, err := s.Get(ctx, examID); err != nil {
		return err
	}
	if err := s.exams.AddAssignment(ctx, examID, candidateID); err != nil {
		return fmt.Errorf("add assignment: %w", err)
	}
	return nil
}

// GrantOverride gives one candidate extra attempts beyond the exam limit.
func (s *ExamService) GrantOverride(ctx context.Context, examID uuid.UUID, candidateID, extraAttempts, grantedBy int) error {
	if _, err := s.Get(ctx, examID); err != nil {
		return err
	}
	if err := s.exams.GrantOverride(ctx, examID, candidateID, extraAttempts, grantedBy); err != nil {
		return fmt.Errorf("grant override: %w", err)
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Int("candidate_id", candidateID).
		Int("extra_attempts", extraAttempts).
		Msg("attempt override granted")
	return nil
}
