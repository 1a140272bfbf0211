package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/provexa/provexa-backend/internal/model"
)

// ProctorSessionRepository handles proctoring session data access.
type ProctorSessionRepository struct {
	pool *pgxpool.Pool
}

// NewProctorSessionRepository creates a new ProctorSessionRepository.
func NewProctorSessionRepository(pool *pgxpool.Pool) *ProctorSessionRepository {
	return &ProctorSessionRepository{pool: pool}
}

// Create opens a proctoring session for an attempt. At most one active
// session per attempt.
func (r *ProctorSessionRepository) Create(ctx context.Context, s *model.ProctorSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO proctor_sessions (id, attempt_id, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (attempt_id) WHERE status = 'ACTIVE'
		 DO NOTHING
		 RETURNING id, started_at`,
		s.ID, s.AttemptID, model.ProctorStatusActive,
	).Scan(&s.ID, &s.StartedAt)
}

// GetActiveByAttempt retrieves the active session for one attempt.
func (r *ProctorSessionRepository) GetActiveByAttempt(ctx context.Context, attemptID uuid.UUID) (*model.ProctorSession, error) {
	s := &model.ProctorSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, attempt_id, status, started_at, ended_at
		 FROM proctor_sessions
		 WHERE attempt_id = $1 AND status = $2`,
		attemptID, model.ProctorStatusActive).Scan(
		&s.ID, &s.AttemptID, &s.Status, &s.StartedAt, &s.EndedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CloseActiveByAttemptIDsTx closes every still-active session belonging
// to the given attempts, inside the caller's transaction. Used by the
// expiry scanner's cascade.
func (r *ProctorSessionRepository) CloseActiveByAttemptIDsTx(ctx context.Context, tx pgx.Tx, attemptIDs []uuid.UUID, now time.Time) (int64, error) {
	if len(attemptIDs) == 0 {
		return 0, nil
	}
	tag, err := tx.Exec(ctx,
		`UPDATE proctor_sessions
		 SET status = $1, ended_at = $2
		 WHERE attempt_id = ANY($3) AND status = $4`,
		model.ProctorStatusCompleted, now, attemptIDs, model.ProctorStatusActive)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CloseActiveByAttempt closes the active session for one attempt.
func (r *ProctorSessionRepository) CloseActiveByAttempt(ctx context.Context, attemptID uuid.UUID, now time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE proctor_sessions
		 SET status = $1, ended_at = $2
		 WHERE attempt_id = $3 AND status = $4`,
		model.ProctorStatusCompleted, now, attemptID, model.ProctorStatusActive)
	return err
}
