package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/provexa/provexa-backend/internal/model"
)

const resultColumns = `
	id, attempt_id, total_score, max_possible_score, pass_score,
	is_passed, is_published, published_at, published_by, created_at`

// ResultRepository handles finalized result data access.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

func scanResult(row pgx.Row) (*model.Result, error) {
	res := &model.Result{}
	err := row.Scan(
		&res.ID, &res.AttemptID, &res.TotalScore, &res.MaxPossibleScore, &res.PassScore,
		&res.IsPassed, &res.IsPublished, &res.PublishedAt, &res.PublishedBy, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Create inserts the result for an attempt. One result per attempt; a
// duplicate finalize surfaces as pgx.ErrNoRows and the caller re-reads.
func (r *ResultRepository) Create(ctx context.Context, res *model.Result) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO results (id, attempt_id, total_score, max_possible_score, pass_score, is_passed)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (attempt_id) DO NOTHING
		 RETURNING id, created_at`,
		res.ID, res.AttemptID, res.TotalScore, res.MaxPossibleScore, res.PassScore, res.IsPassed,
	).Scan(&res.ID, &res.CreatedAt)
}

// GetByAttempt retrieves the result for one attempt.
func (r *ResultRepository) GetByAttempt(ctx context.Context, attemptID uuid.UUID) (*model.Result, error) {
	return scanResult(r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM results WHERE attempt_id = $1`, attemptID))
}

// GetByID retrieves one result.
func (r *ResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Result, error) {
	return scanResult(r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM results WHERE id = $1`, id))
}

// UpdateScores rewrites the score snapshot after a regrade.
func (r *ResultRepository) UpdateScores(ctx context.Context, attemptID uuid.UUID, total float64, passed bool) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE results SET total_score = $1, is_passed = $2 WHERE attempt_id = $3`,
		total, passed, attemptID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetPublished publishes or unpublishes one result.
func (r *ResultRepository) SetPublished(ctx context.Context, id uuid.UUID, published bool, by *int, at *time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE results SET is_published = $1, published_by = $2, published_at = $3 WHERE id = $4`,
		published, by, at, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListByExam retrieves all results for an exam's attempts.
func (r *ResultRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Result, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+prefixColumns("r", resultColumns)+`
		 FROM results r
		 JOIN attempts a ON a.id = r.attempt_id
		 WHERE a.exam_id = $1
		 ORDER BY r.created_at`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Result
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}
