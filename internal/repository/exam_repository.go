package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/provexa/provexa-backend/internal/model"
)

const examColumns = `
	id, title, author_id, status, schedule_type, window_start, window_end,
	duration_minutes, max_attempts, access_mode, access_code,
	shuffle_questions, pass_score, instructions, created_at, updated_at`

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

func scanExam(row pgx.Row) (*model.Exam, error) {
	e := &model.Exam{}
	err := row.Scan(
		&e.ID, &e.Title, &e.AuthorID, &e.Status, &e.ScheduleType, &e.WindowStart, &e.WindowEnd,
		&e.DurationMinutes, &e.MaxAttempts, &e.AccessMode, &e.AccessCode,
		&e.ShuffleQuestions, &e.PassScore, &e.Instructions, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetByID retrieves one exam.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id))
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (
			id, title, author_id, status, schedule_type, window_start, window_end,
			duration_minutes, max_attempts, access_mode, access_code,
			shuffle_questions, pass_score, instructions
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING created_at, updated_at`,
		e.ID, e.Title, e.AuthorID, e.Status, e.ScheduleType, e.WindowStart, e.WindowEnd,
		e.DurationMinutes, e.MaxAttempts, e.AccessMode, e.AccessCode,
		e.ShuffleQuestions, e.PassScore, e.Instructions,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
}

// Update rewrites the mutable exam fields.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET title = $1, window_start = $2, window_end = $3, duration_minutes = $4,
		     max_attempts = $5, access_code = $6, shuffle_questions = $7,
		     pass_score = $8, instructions = $9, updated_at = NOW()
		 WHERE id = $10`,
		e.Title, e.WindowStart, e.WindowEnd, e.DurationMinutes,
		e.MaxAttempts, e.AccessCode, e.ShuffleQuestions,
		e.PassScore, e.Instructions, e.ID)
	return err
}

// Publish transitions a draft exam to PUBLISHED.
func (r *ExamRepository) Publish(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exams SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND status = $3`,
		model.ExamStatusPublished, id, model.ExamStatusDraft)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// List retrieves paginated exams, newest first.
func (r *ExamRepository) List(ctx context.Context, page, perPage int) ([]model.Exam, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM exams`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+`
		 FROM exams
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

// IsAssigned reports whether a candidate is assigned to an ASSIGNED exam.
func (r *ExamRepository) IsAssigned(ctx context.Context, examID uuid.UUID, candidateID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM exam_assignments WHERE exam_id = $1 AND candidate_id = $2
		 )`, examID, candidateID).Scan(&exists)
	return exists, err
}

// AddAssignment assigns a candidate to an exam.
func (r *ExamRepository) AddAssignment(ctx context.Context, examID uuid.UUID, candidateID int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exam_assignments (exam_id, candidate_id)
		 VALUES ($1, $2)
		 ON CONFLICT (exam_id, candidate_id) DO NOTHING`,
		examID, candidateID)
	return err
}

// GrantOverride grants (or tops up) extra attempts for a candidate.
func (r *ExamRepository) GrantOverride(ctx context.Context, examID uuid.UUID, candidateID, extraAttempts, grantedBy int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attempt_overrides (exam_id, candidate_id, extra_attempts, granted_by)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (exam_id, candidate_id) DO UPDATE
		 SET extra_attempts = attempt_overrides.extra_attempts + EXCLUDED.extra_attempts`,
		examID, candidateID, extraAttempts, grantedBy)
	return err
}
