package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/provexa/provexa-backend/internal/model"
)

const attemptColumns = `
	id, exam_id, candidate_id, attempt_number,
	started_at, submitted_at, expires_at, extra_time_seconds,
	last_activity_at, resume_count, status, expiry_reason,
	total_score, is_passed, force_submitted_by, force_submitted_at,
	device_info, ip_address`

// AttemptRepository handles attempt data access. All terminal transitions
// are conditional on the current status still being in the active set, so
// a racing submit and scanner expiry resolve to exactly one winner.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

func scanAttempt(row pgx.Row) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := row.Scan(
		&a.ID, &a.ExamID, &a.CandidateID, &a.AttemptNumber,
		&a.StartedAt, &a.SubmittedAt, &a.ExpiresAt, &a.ExtraTimeSeconds,
		&a.LastActivityAt, &a.ResumeCount, &a.Status, &a.ExpiryReason,
		&a.TotalScore, &a.IsPassed, &a.ForceSubmittedBy, &a.ForceSubmittedAt,
		&a.DeviceInfo, &a.IPAddress,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves one attempt.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE id = $1`, id))
}

// GetActive retrieves the single non-terminal attempt for an exam-candidate
// pair, if one exists. The partial unique index guarantees at most one.
func (r *AttemptRepository) GetActive(ctx context.Context, examID uuid.UUID, candidateID int) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+`
		 FROM attempts
		 WHERE exam_id = $1 AND candidate_id = $2
		   AND status = ANY($3)`,
		examID, candidateID, statusStrings(model.ActiveAttemptStatuses)))
}

// CountUsed counts attempts that consume the candidate's quota.
// Cancelled attempts do not count against max_attempts.
func (r *AttemptRepository) CountUsed(ctx context.Context, examID uuid.UUID, candidateID int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts
		 WHERE exam_id = $1 AND candidate_id = $2 AND status <> $3`,
		examID, candidateID, model.AttemptStatusCancelled).Scan(&n)
	return n, err
}

// GetOverride fetches the candidate's extra-attempt grant for an exam.
func (r *AttemptRepository) GetOverride(ctx context.Context, examID uuid.UUID, candidateID int) (*model.AttemptOverride, error) {
	o := &model.AttemptOverride{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, candidate_id, extra_attempts, used_attempts, granted_by, created_at
		 FROM attempt_overrides
		 WHERE exam_id = $1 AND candidate_id = $2`,
		examID, candidateID).Scan(
		&o.ID, &o.ExamID, &o.CandidateID, &o.ExtraAttempts, &o.UsedAttempts, &o.GrantedBy, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ConsumeOverride burns one grant. The predicate keeps it safe under
// concurrent starts: only an unused grant can be consumed.
func (r *AttemptRepository) ConsumeOverride(ctx context.Context, id int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE attempt_overrides
		 SET used_attempts = used_attempts + 1
		 WHERE id = $1 AND used_attempts < extra_attempts`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CreateWithSnapshot inserts the attempt and its frozen question snapshot
// in one transaction. The partial unique index on active attempts turns a
// concurrent duplicate start into pgx.ErrNoRows via DO NOTHING.
func (r *AttemptRepository) CreateWithSnapshot(ctx context.Context, a *model.Attempt, snapshot []model.AttemptQuestion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO attempts (
			id, exam_id, candidate_id, attempt_number,
			started_at, expires_at, last_activity_at, status, expiry_reason,
			device_info, ip_address
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (exam_id, candidate_id) WHERE status IN ('STARTED', 'IN_PROGRESS', 'RESUMED')
		 DO NOTHING
		 RETURNING id`,
		a.ID, a.ExamID, a.CandidateID, a.AttemptNumber,
		a.StartedAt, a.ExpiresAt, a.LastActivityAt, a.Status, a.ExpiryReason,
		a.DeviceInfo, a.IPAddress,
	).Scan(&a.ID)
	if err != nil {
		return err // pgx.ErrNoRows means a concurrent start won
	}

	rows := make([][]interface{}, 0, len(snapshot))
	for _, q := range snapshot {
		rows = append(rows, []interface{}{q.ID, a.ID, q.QuestionID, q.QuestionType, q.OrderNum, q.Points})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"attempt_questions"},
		[]string{"id", "attempt_id", "question_id", "question_type", "order_num", "points"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Resume marks the attempt resumed and bumps the resume counter.
func (r *AttemptRepository) Resume(ctx context.Context, id uuid.UUID, now time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE attempts
		 SET status = $1, resume_count = resume_count + 1, last_activity_at = $2
		 WHERE id = $3 AND status = ANY($4)`,
		model.AttemptStatusResumed, now, id, statusStrings(model.ActiveAttemptStatuses))
	return err
}

// TransitionTerminal performs the conditional terminal transition. It
// returns false when the attempt was no longer active, meaning another
// caller (candidate submit, admin, or the scanner) won the race.
func (r *AttemptRepository) TransitionTerminal(
	ctx context.Context,
	id uuid.UUID,
	to model.AttemptStatus,
	reason model.ExpiryReason,
	submittedAt *time.Time,
	forcedBy *int,
) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE attempts
		 SET status = $1, expiry_reason = $2, submitted_at = $3,
		     force_submitted_by = $4,
		     force_submitted_at = CASE WHEN $4::int IS NULL THEN NULL ELSE $3 END
		 WHERE id = $5 AND status = ANY($6)`,
		to, reason, submittedAt, forcedBy, id, statusStrings(model.ActiveAttemptStatuses))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ExtendTime grants extra seconds and recomputes expires_at from scratch
// (started_at + duration + total extra) so repeated grants cannot drift.
func (r *AttemptRepository) ExtendTime(ctx context.Context, id uuid.UUID, extraSeconds int) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`UPDATE attempts a
		 SET extra_time_seconds = a.extra_time_seconds + $2,
		     expires_at = a.started_at
		                  + make_interval(mins => e.duration_minutes)
		                  + make_interval(secs => a.extra_time_seconds + $2)
		 FROM exams e
		 WHERE a.id = $1 AND e.id = a.exam_id AND a.status = ANY($3)
		 RETURNING `+prefixColumns("a", attemptColumns),
		id, extraSeconds, statusStrings(model.ActiveAttemptStatuses)))
}

// TouchActivity updates last_activity_at, feeding expiry classification.
func (r *AttemptRepository) TouchActivity(ctx context.Context, id uuid.UUID, now time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE attempts SET last_activity_at = $1,
		     status = CASE WHEN status = $2 THEN $3 ELSE status END
		 WHERE id = $4 AND status = ANY($5)`,
		now, model.AttemptStatusStarted, model.AttemptStatusInProgress,
		id, statusStrings(model.ActiveAttemptStatuses))
	return err
}

// FindTimerExpired returns active attempts whose own timer has lapsed.
func (r *AttemptRepository) FindTimerExpired(ctx context.Context, now time.Time) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+`
		 FROM attempts
		 WHERE status = ANY($1) AND expires_at < $2
		 ORDER BY expires_at`,
		statusStrings(model.ActiveAttemptStatuses), now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAttempts(rows)
}

// FindWindowClosed returns active attempts whose exam's scheduled end has
// passed but whose own timer has not. The expires_at predicate keeps this
// set disjoint from FindTimerExpired, so every attempt gets exactly one
// expiry reason.
func (r *AttemptRepository) FindWindowClosed(ctx context.Context, now time.Time) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+prefixColumns("a", attemptColumns)+`
		 FROM attempts a
		 JOIN exams e ON e.id = a.exam_id
		 WHERE a.status = ANY($1)
		   AND a.expires_at >= $2
		   AND e.window_end IS NOT NULL AND e.window_end < $2
		 ORDER BY e.window_end`,
		statusStrings(model.ActiveAttemptStatuses), now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAttempts(rows)
}

// ExpiredTransition is one attempt's expiry, with its computed reason.
type ExpiredTransition struct {
	AttemptID uuid.UUID
	Reason    model.ExpiryReason
}

// ExpireBatch transitions a batch of attempts to EXPIRED inside the
// caller's transaction, one statement for the whole sweep. The status
// predicate makes a rerun over already-expired attempts a no-op. It
// returns the ids that actually transitioned; an attempt that submitted
// between scan and update is absent from the return.
func (r *AttemptRepository) ExpireBatch(ctx context.Context, tx pgx.Tx, batch []ExpiredTransition, now time.Time) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(batch))
	reasons := make([]string, 0, len(batch))
	for _, item := range batch {
		ids = append(ids, item.AttemptID)
		reasons = append(reasons, string(item.Reason))
	}

	rows, err := tx.Query(ctx,
		`UPDATE attempts AS a
		 SET status = 'EXPIRED', expiry_reason = t.reason, submitted_at = $3
		 FROM (
			SELECT u.id, u.reason
			FROM UNNEST($1::uuid[], $2::text[]) AS u (id, reason)
		 ) AS t
		 WHERE a.id = t.id
		   AND a.status IN ('STARTED', 'IN_PROGRESS', 'RESUMED')
		 RETURNING a.id`,
		ids, reasons, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	closed := make([]uuid.UUID, 0, len(batch))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		closed = append(closed, id)
	}
	return closed, rows.Err()
}

// UpdateScore mirrors the finalized grading outcome onto the attempt.
func (r *AttemptRepository) UpdateScore(ctx context.Context, id uuid.UUID, total float64, passed bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE attempts SET total_score = $1, is_passed = $2 WHERE id = $3`,
		total, passed, id)
	return err
}

// AttemptSummary is one row of the admin attempt listing.
type AttemptSummary struct {
	ID            uuid.UUID           `json:"id"`
	CandidateID   int                 `json:"candidate_id"`
	CandidateName string              `json:"candidate_name"`
	AttemptNumber int                 `json:"attempt_number"`
	Status        model.AttemptStatus `json:"status"`
	ExpiryReason  model.ExpiryReason  `json:"expiry_reason"`
	StartedAt     time.Time           `json:"started_at"`
	SubmittedAt   *time.Time          `json:"submitted_at,omitempty"`
	TotalScore    *float64            `json:"total_score,omitempty"`
	IsPassed      *bool               `json:"is_passed,omitempty"`
}

// ListByExam retrieves paginated attempts for one exam.
func (r *AttemptRepository) ListByExam(ctx context.Context, examID uuid.UUID, page, perPage int) ([]AttemptSummary, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts WHERE exam_id = $1`, examID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.candidate_id, c.name, a.attempt_number, a.status, a.expiry_reason,
		        a.started_at, a.submitted_at, a.total_score, a.is_passed
		 FROM attempts a
		 JOIN candidates c ON c.id = a.candidate_id
		 WHERE a.exam_id = $1
		 ORDER BY a.started_at DESC
		 LIMIT $2 OFFSET $3`,
		examID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []AttemptSummary
	for rows.Next() {
		var s AttemptSummary
		if err := rows.Scan(
			&s.ID, &s.CandidateID, &s.CandidateName, &s.AttemptNumber, &s.Status, &s.ExpiryReason,
			&s.StartedAt, &s.SubmittedAt, &s.TotalScore, &s.IsPassed,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// GetSnapshot returns the frozen question rows for an attempt, in order.
func (r *AttemptRepository) GetSnapshot(ctx context.Context, attemptID uuid.UUID) ([]model.AttemptQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, attempt_id, question_id, question_type, order_num, points
		 FROM attempt_questions
		 WHERE attempt_id = $1
		 ORDER BY order_num`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AttemptQuestion
	for rows.Next() {
		var q model.AttemptQuestion
		if err := rows.Scan(&q.ID, &q.AttemptID, &q.QuestionID, &q.QuestionType, &q.OrderNum, &q.Points); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// GetPaper joins the snapshot with question bodies, stripped of answer
// keys, using the frozen order and points.
func (r *AttemptRepository) GetPaper(ctx context.Context, attemptID uuid.UUID) ([]model.QuestionForCandidate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.question_text, aq.question_type, q.options, aq.points, aq.order_num
		 FROM attempt_questions aq
		 JOIN questions q ON q.id = aq.question_id
		 WHERE aq.attempt_id = $1
		 ORDER BY aq.order_num`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.QuestionForCandidate
	for rows.Next() {
		var q model.QuestionForCandidate
		if err := rows.Scan(&q.ID, &q.QuestionText, &q.QuestionType, &q.Options, &q.Points, &q.OrderNum); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// ─── Helpers ────────────────────────────────────────────────────────

func collectAttempts(rows pgx.Rows) ([]model.Attempt, error) {
	var out []model.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func statusStrings(statuses []model.AttemptStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
