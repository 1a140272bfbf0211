package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/provexa/provexa-backend/internal/config"
	"github.com/provexa/provexa-backend/internal/service"
)

const GradePollTimeout = 1 * time.Second // Must be >= 1s to satisfy Redis

// GradingWorker drains the grading queue and auto-grades each closed
// attempt. Grading is idempotent, so a redelivered attempt id is harmless.
type GradingWorker struct {
	grading *service.GradingService
	rdb     *redis.Client
	log     zerolog.Logger
}

// NewGradingWorker creates a new GradingWorker.
func NewGradingWorker(grading *service.GradingService, rdb *redis.Client, log zerolog.Logger) *GradingWorker {
	return &GradingWorker{
		grading: grading,
		rdb:     rdb,
		log:     log.With().Str("component", "grading_worker").Logger(),
	}
}

// Start runs the queue loop until the context is cancelled.
func (w *GradingWorker) Start(ctx context.Context) {
	w.log.Info().Msg("GradingWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("GradingWorker stopped")
			return
		default:
			item, err := w.rdb.BLPop(ctx, GradePollTimeout, config.WorkerKey.GradeAttemptsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}
			w.gradeSafe(ctx, item[1])
		}
	}
}

func (w *GradingWorker) gradeSafe(ctx context.Context, raw string) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error().Interface("panic", r).Str("payload", raw).Msg("grading panicked")
		}
	}()

	attemptID, err := uuid.Parse(raw)
	if err != nil {
		w.log.Error().Err(err).Str("payload", raw).Msg("invalid queue payload")
		return
	}

	session, err := w.grading.Initiate(ctx, attemptID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptNotFound), errors.Is(err, service.ErrAttemptNotGradable):
			// Nothing to grade; dropping is correct.
			w.log.Warn().Err(err).Str("attempt_id", raw).Msg("skipping queued attempt")
		default:
			// Transient failure: requeue and let a later pop retry.
			w.log.Error().Err(err).Str("attempt_id", raw).Msg("grading failed, requeueing")
			if rerr := w.rdb.RPush(ctx, config.WorkerKey.GradeAttemptsQueue, raw).Err(); rerr != nil {
				w.log.Error().Err(rerr).Str("attempt_id", raw).Msg("requeue failed")
			}
		}
		return
	}

	w.log.Info().
		Str("attempt_id", raw).
		Str("session_id", session.ID.String()).
		Str("status", string(session.Status)).
		Int("manual_pending", session.ManualGradingRequired).
		Msg("queued attempt graded")
}
