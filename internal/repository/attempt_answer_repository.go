package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/provexa/provexa-backend/internal/model"
)

// AttemptAnswerRepository handles candidate answer data access. The unique
// key on (attempt_id, question_id) gives last-writer-wins upsert semantics
// without application-level locking.
type AttemptAnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptAnswerRepository creates a new AttemptAnswerRepository.
func NewAttemptAnswerRepository(pool *pgxpool.Pool) *AttemptAnswerRepository {
	return &AttemptAnswerRepository{pool: pool}
}

// Upsert writes the answer row for (attempt, question), replacing any
// previous content. Grading outputs reset on rewrite: a changed answer
// has not been graded.
func (r *AttemptAnswerRepository) Upsert(ctx context.Context, ans *model.AttemptAnswer) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO attempt_answers (id, attempt_id, question_id, selected_option_ids, text_answer, answered_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (attempt_id, question_id) DO UPDATE
		 SET selected_option_ids = EXCLUDED.selected_option_ids,
		     text_answer = EXCLUDED.text_answer,
		     answered_at = EXCLUDED.answered_at,
		     is_correct = NULL,
		     score = NULL
		 RETURNING id, answered_at`,
		ans.ID, ans.AttemptID, ans.QuestionID, ans.SelectedOptionIDs, ans.TextAnswer, ans.AnsweredAt,
	).Scan(&ans.ID, &ans.AnsweredAt)
}

// ListByAttempt retrieves all answers for an attempt.
func (r *AttemptAnswerRepository) ListByAttempt(ctx context.Context, attemptID uuid.UUID) ([]model.AttemptAnswer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, attempt_id, question_id, selected_option_ids, text_answer, answered_at, is_correct, score
		 FROM attempt_answers
		 WHERE attempt_id = $1`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AttemptAnswer
	for rows.Next() {
		var a model.AttemptAnswer
		if err := rows.Scan(&a.ID, &a.AttemptID, &a.QuestionID, &a.SelectedOptionIDs, &a.TextAnswer, &a.AnsweredAt, &a.IsCorrect, &a.Score); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountByAttempt returns how many questions have a recorded answer.
func (r *AttemptAnswerRepository) CountByAttempt(ctx context.Context, attemptID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempt_answers WHERE attempt_id = $1`, attemptID).Scan(&n)
	return n, err
}

// GradedOutcome carries one auto-grading result back onto the answer row.
type GradedOutcome struct {
	QuestionID uuid.UUID
	IsCorrect  *bool
	Score      float64
}

// ApplyGrades writes auto-grading outcomes onto answer rows in one
// statement, bulk UPDATE via UNNEST.
func (r *AttemptAnswerRepository) ApplyGrades(ctx context.Context, attemptID uuid.UUID, grades []GradedOutcome) error {
	if len(grades) == 0 {
		return nil
	}

	questionIDs := make([]uuid.UUID, 0, len(grades))
	corrects := make([]*bool, 0, len(grades))
	scores := make([]float64, 0, len(grades))
	for _, g := range grades {
		questionIDs = append(questionIDs, g.QuestionID)
		corrects = append(corrects, g.IsCorrect)
		scores = append(scores, g.Score)
	}

	_, err := r.pool.Exec(ctx,
		`UPDATE attempt_answers AS a
		 SET is_correct = t.is_correct, score = t.score
		 FROM (
			SELECT u.question_id, u.is_correct, u.score
			FROM UNNEST($2::uuid[], $3::bool[], $4::float8[]) AS u (question_id, is_correct, score)
		 ) AS t
		 WHERE a.attempt_id = $1 AND a.question_id = t.question_id`,
		attemptID, questionIDs, corrects, scores)
	return err
}
