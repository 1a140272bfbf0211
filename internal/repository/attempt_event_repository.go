package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/provexa/provexa-backend/internal/model"
)

// AttemptEventRepository handles the append-only attempt log. No update
// or delete path exists; audit rows are immutable once written.
type AttemptEventRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptEventRepository creates a new AttemptEventRepository.
func NewAttemptEventRepository(pool *pgxpool.Pool) *AttemptEventRepository {
	return &AttemptEventRepository{pool: pool}
}

// Insert appends one event.
func (r *AttemptEventRepository) Insert(ctx context.Context, e *model.AttemptEvent) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO attempt_events (attempt_id, event_type, payload)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		e.AttemptID, e.EventType, e.Payload,
	).Scan(&e.ID, &e.CreatedAt)
}

// InsertBatchTx appends a batch of events inside the caller's transaction,
// using COPY for a single round trip.
func (r *AttemptEventRepository) InsertBatchTx(ctx context.Context, tx pgx.Tx, events []model.AttemptEvent) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([][]interface{}, 0, len(events))
	for _, e := range events {
		rows = append(rows, []interface{}{e.AttemptID, e.EventType, e.Payload})
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"attempt_events"},
		[]string{"attempt_id", "event_type", "payload"},
		pgx.CopyFromRows(rows))
	return err
}

// ListByAttempt retrieves the event feed for one attempt, oldest first.
func (r *AttemptEventRepository) ListByAttempt(ctx context.Context, attemptID uuid.UUID) ([]model.AttemptEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, attempt_id, event_type, payload, created_at
		 FROM attempt_events
		 WHERE attempt_id = $1
		 ORDER BY id`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AttemptEvent
	for rows.Next() {
		var e model.AttemptEvent
		if err := rows.Scan(&e.ID, &e.AttemptID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
