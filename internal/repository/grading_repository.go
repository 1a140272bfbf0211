package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/provexa/provexa-backend/internal/model"
)

const gradingSessionColumns = `
	id, attempt_id, status, total_score, max_possible_score,
	pass_score, manual_grading_required, created_at, completed_at`

// GradingRepository handles grading session and graded answer data access.
type GradingRepository struct {
	pool *pgxpool.Pool
}

// NewGradingRepository creates a new GradingRepository.
func NewGradingRepository(pool *pgxpool.Pool) *GradingRepository {
	return &GradingRepository{pool: pool}
}

func scanGradingSession(row pgx.Row) (*model.GradingSession, error) {
	s := &model.GradingSession{}
	err := row.Scan(
		&s.ID, &s.AttemptID, &s.Status, &s.TotalScore, &s.MaxPossibleScore,
		&s.PassScore, &s.ManualGradingRequired, &s.CreatedAt, &s.CompletedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateSession inserts a grading session for an attempt. One session per
// attempt: a concurrent duplicate initiate surfaces as pgx.ErrNoRows.
func (r *GradingRepository) CreateSession(ctx context.Context, s *model.GradingSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO grading_sessions (id, attempt_id, status, total_score, max_possible_score, pass_score, manual_grading_required)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (attempt_id) DO NOTHING
		 RETURNING id, created_at`,
		s.ID, s.AttemptID, s.Status, s.TotalScore, s.MaxPossibleScore, s.PassScore, s.ManualGradingRequired,
	).Scan(&s.ID, &s.CreatedAt)
}

// GetSessionByID retrieves one grading session.
func (r *GradingRepository) GetSessionByID(ctx context.Context, id uuid.UUID) (*model.GradingSession, error) {
	return scanGradingSession(r.pool.QueryRow(ctx,
		`SELECT `+gradingSessionColumns+` FROM grading_sessions WHERE id = $1`, id))
}

// GetSessionByAttempt retrieves the grading session for an attempt.
func (r *GradingRepository) GetSessionByAttempt(ctx context.Context, attemptID uuid.UUID) (*model.GradingSession, error) {
	return scanGradingSession(r.pool.QueryRow(ctx,
		`SELECT `+gradingSessionColumns+` FROM grading_sessions WHERE attempt_id = $1`, attemptID))
}

// InsertGradedAnswers bulk-inserts the per-question outcomes via COPY.
func (r *GradingRepository) InsertGradedAnswers(ctx context.Context, answers []model.GradedAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	rows := make([][]interface{}, 0, len(answers))
	for _, a := range answers {
		needsManual := !a.IsManuallyGraded && a.IsCorrect == nil
		rows = append(rows, []interface{}{
			a.ID, a.GradingSessionID, a.QuestionID, a.Score, a.MaxScore,
			a.IsCorrect, a.IsManuallyGraded, needsManual, a.GraderComment,
		})
	}
	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"graded_answers"},
		[]string{"id", "grading_session_id", "question_id", "score", "max_score", "is_correct", "is_manually_graded", "needs_manual", "grader_comment"},
		pgx.CopyFromRows(rows))
	return err
}

// ListGradedAnswers retrieves all graded answers for a session.
func (r *GradingRepository) ListGradedAnswers(ctx context.Context, sessionID uuid.UUID) ([]model.GradedAnswer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, grading_session_id, question_id, score, max_score, is_correct, is_manually_graded, grader_comment
		 FROM graded_answers
		 WHERE grading_session_id = $1`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.GradedAnswer
	for rows.Next() {
		var a model.GradedAnswer
		if err := rows.Scan(&a.ID, &a.GradingSessionID, &a.QuestionID, &a.Score, &a.MaxScore, &a.IsCorrect, &a.IsManuallyGraded, &a.GraderComment); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetGradedAnswer retrieves one graded answer by session and question.
func (r *GradingRepository) GetGradedAnswer(ctx context.Context, sessionID, questionID uuid.UUID) (*model.GradedAnswer, error) {
	a := &model.GradedAnswer{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, grading_session_id, question_id, score, max_score, is_correct, is_manually_graded, grader_comment
		 FROM graded_answers
		 WHERE grading_session_id = $1 AND question_id = $2`,
		sessionID, questionID).Scan(
		&a.ID, &a.GradingSessionID, &a.QuestionID, &a.Score, &a.MaxScore, &a.IsCorrect, &a.IsManuallyGraded, &a.GraderComment)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ApplyManualGrade overwrites one graded answer with a grader's verdict
// and clears its manual flag.
func (r *GradingRepository) ApplyManualGrade(ctx context.Context, sessionID, questionID uuid.UUID, score float64, isCorrect bool, comment *string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE graded_answers
		 SET score = $1, is_correct = $2, is_manually_graded = TRUE, needs_manual = FALSE, grader_comment = $3
		 WHERE grading_session_id = $4 AND question_id = $5`,
		score, isCorrect, comment, sessionID, questionID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RecomputeAggregates derives the session totals from the graded answer
// rows from scratch. Incremental arithmetic drifts under regrades; a full
// recompute cannot.
func (r *GradingRepository) RecomputeAggregates(ctx context.Context, sessionID uuid.UUID) (*model.GradingSession, error) {
	return scanGradingSession(r.pool.QueryRow(ctx,
		`UPDATE grading_sessions s
		 SET total_score = agg.total,
		     manual_grading_required = agg.manual_pending
		 FROM (
			SELECT COALESCE(SUM(score), 0) AS total,
			       COUNT(*) FILTER (WHERE needs_manual) AS manual_pending
			FROM graded_answers
			WHERE grading_session_id = $1
		 ) AS agg
		 WHERE s.id = $1
		 RETURNING `+prefixColumns("s", gradingSessionColumns), sessionID))
}

// CompleteSession transitions a session to COMPLETED. Unless forced, the
// transition requires that no manual items remain.
func (r *GradingRepository) CompleteSession(ctx context.Context, sessionID uuid.UUID, force bool, now time.Time) (*model.GradingSession, error) {
	return scanGradingSession(r.pool.QueryRow(ctx,
		`UPDATE grading_sessions
		 SET status = $1, completed_at = $2
		 WHERE id = $3 AND status <> $1
		   AND (manual_grading_required = 0 OR $4)
		 RETURNING `+gradingSessionColumns,
		model.GradingStatusCompleted, now, sessionID, force))
}

// InsertRegradeLog appends one row to the insert-only regrade trail.
func (r *GradingRepository) InsertRegradeLog(ctx context.Context, entry *model.RegradeLogEntry) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO regrade_log (grading_session_id, question_id, previous_score, new_score, reason, graded_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		entry.GradingSessionID, entry.QuestionID, entry.PreviousScore, entry.NewScore, entry.Reason, entry.GradedBy,
	).Scan(&entry.ID, &entry.CreatedAt)
}
