package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/provexa/provexa-backend/internal/config"
	"github.com/provexa/provexa-backend/internal/model"
	"github.com/provexa/provexa-backend/internal/realtime"
	"github.com/provexa/provexa-backend/internal/repository"
	"github.com/provexa/provexa-backend/internal/service"
)

// ExpiryWorker is the single timeout authority. It sweeps for overdue
// attempts on a fixed interval and closes each batch in one transaction.
// The next sweep is armed only after the previous one finishes, so
// sweeps never overlap even when a batch runs long.
type ExpiryWorker struct {
	cfg      *config.Config
	pool     *pgxpool.Pool
	attempts *repository.AttemptRepository
	events   *repository.AttemptEventRepository
	proctors *repository.ProctorSessionRepository
	hub      *realtime.Hub
	rdb      *redis.Client
	clock    service.Clock
	log      zerolog.Logger
}

// NewExpiryWorker creates a new ExpiryWorker.
func NewExpiryWorker(
	cfg *config.Config,
	pool *pgxpool.Pool,
	attempts *repository.AttemptRepository,
	events *repository.AttemptEventRepository,
	proctors *repository.ProctorSessionRepository,
	hub *realtime.Hub,
	rdb *redis.Client,
	log zerolog.Logger,
) *ExpiryWorker {
	return &ExpiryWorker{
		cfg:      cfg,
		pool:     pool,
		attempts: attempts,
		events:   events,
		proctors: proctors,
		hub:      hub,
		rdb:      rdb,
		clock:    time.Now,
		log:      log.With().Str("component", "expiry_worker").Logger(),
	}
}

// Start runs the sweep loop until the context is cancelled.
func (w *ExpiryWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.cfg.ScanInterval).Msg("ExpiryWorker started")

	timer := time.NewTimer(w.cfg.ScanInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("ExpiryWorker stopped")
			return
		case <-timer.C:
			w.sweepSafe(ctx)
			timer.Reset(w.cfg.ScanInterval)
		}
	}
}

// sweepSafe shields the loop: a panic or error in one sweep is logged
// and the next sweep still runs.
func (w *ExpiryWorker) sweepSafe(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error().Interface("panic", r).Msg("sweep panicked")
		}
	}()

	if err := w.sweep(ctx); err != nil {
		w.log.Error().Err(err).Msg("sweep failed")
	}
}

// sweep closes every overdue attempt. The two candidate sets are
// disjoint by construction: timer-expired attempts have expires_at in
// the past, window-closed attempts have expires_at still ahead. Each
// attempt therefore receives exactly one expiry reason.
func (w *ExpiryWorker) sweep(ctx context.Context) error {
	now := w.clock()

	timerExpired, err := w.attempts.FindTimerExpired(ctx, now)
	if err != nil {
		return err
	}
	windowClosed, err := w.attempts.FindWindowClosed(ctx, now)
	if err != nil {
		return err
	}
	if len(timerExpired) == 0 && len(windowClosed) == 0 {
		return nil
	}

	batch := make([]repository.ExpiredTransition, 0, len(timerExpired)+len(windowClosed))
	candidates := make(map[uuid.UUID]model.Attempt, cap(batch))
	for _, a := range timerExpired {
		a.ExpiryReason = a.ClassifyExpiry(w.cfg.ActivityGrace)
		batch = append(batch, repository.ExpiredTransition{AttemptID: a.ID, Reason: a.ExpiryReason})
		candidates[a.ID] = a
	}
	for _, a := range windowClosed {
		a.ExpiryReason = model.ExpiryReasonExamWindowClosed
		batch = append(batch, repository.ExpiredTransition{AttemptID: a.ID, Reason: a.ExpiryReason})
		candidates[a.ID] = a
	}

	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	closedIDs, err := w.attempts.ExpireBatch(ctx, tx, batch, now)
	if err != nil {
		return err
	}

	// Only attempts the update actually closed get events and
	// notifications; a concurrent submit that won the race keeps its
	// SUBMITTED record untouched.
	expired := make([]model.Attempt, 0, len(closedIDs))
	events := make([]model.AttemptEvent, 0, len(closedIDs))
	for _, id := range closedIDs {
		a := candidates[id]
		expired = append(expired, a)
		payload, _ := json.Marshal(map[string]string{"reason": string(a.ExpiryReason)})
		events = append(events, model.AttemptEvent{
			AttemptID: a.ID,
			EventType: model.EventTimedOut,
			Payload:   payload,
			CreatedAt: now,
		})
	}
	if err := w.events.InsertBatchTx(ctx, tx, events); err != nil {
		return err
	}

	sessions, err := w.proctors.CloseActiveByAttemptIDsTx(ctx, tx, closedIDs, now)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	// Everything past the commit is best effort. A dropped notification
	// never blocks or reverses an expiry; polling clients catch up.
	for i := range expired {
		a := &expired[i]
		w.hub.NotifyExpiry(a.ID, realtime.EventAttemptExpired, string(a.ExpiryReason),
			"Time is up. Your attempt has been closed.")
		w.enqueueGrading(ctx, a)
		w.publishMonitor(ctx, a)
	}

	w.log.Info().
		Int("closed", len(expired)).
		Int("timer_expired", len(timerExpired)).
		Int("window_closed", len(windowClosed)).
		Int64("proctor_sessions_closed", sessions).
		Msg("expiry sweep finished")
	return nil
}

func (w *ExpiryWorker) enqueueGrading(ctx context.Context, a *model.Attempt) {
	if err := w.rdb.RPush(ctx, config.WorkerKey.GradeAttemptsQueue, a.ID.String()).Err(); err != nil {
		w.log.Error().Err(err).Str("attempt_id", a.ID.String()).Msg("enqueue grading")
	}
}

func (w *ExpiryWorker) publishMonitor(ctx context.Context, a *model.Attempt) {
	payload, err := json.Marshal(map[string]interface{}{
		"event":        "expired",
		"attempt_id":   a.ID.String(),
		"candidate_id": a.CandidateID,
		"reason":       a.ExpiryReason,
	})
	if err != nil {
		return
	}
	if err := w.rdb.Publish(ctx, config.CacheKey.ExamMonitorChannel(a.ExamID.String()), payload).Err(); err != nil {
		w.log.Debug().Err(err).Msg("publish monitor event")
	}
}
