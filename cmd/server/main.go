package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/provexa/provexa-backend/internal/config"
	"github.com/provexa/provexa-backend/internal/database"
	"github.com/provexa/provexa-backend/internal/handler"
	"github.com/provexa/provexa-backend/internal/logger"
	"github.com/provexa/provexa-backend/internal/realtime"
	"github.com/provexa/provexa-backend/internal/repository"
	"github.com/provexa/provexa-backend/internal/router"
	"github.com/provexa/provexa-backend/internal/service"
	"github.com/provexa/provexa-backend/internal/validator"
	"github.com/provexa/provexa-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Provexa Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	answerRepo := repository.NewAttemptAnswerRepository(pool)
	eventRepo := repository.NewAttemptEventRepository(pool)
	proctorRepo := repository.NewProctorSessionRepository(pool)
	gradingRepo := repository.NewGradingRepository(pool)
	resultRepo := repository.NewResultRepository(pool)

	// ─── Initialize Realtime Hub ───────────────────────────────────────
	hub := realtime.NewHub(log)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb, userRepo)
	attemptService := service.NewAttemptService(cfg, attemptRepo, examRepo, questionRepo, eventRepo, proctorRepo, hub, rdb, log)
	answerService := service.NewAnswerService(attemptRepo, answerRepo, attemptService, log)
	gradingService := service.NewGradingService(&service.GradingDeps{
		Sessions:  gradingRepo,
		Attempts:  attemptRepo,
		Answers:   answerRepo,
		Questions: questionRepo,
		Exams:     examRepo,
		Results:   resultRepo,
	}, log)
	resultService := service.NewResultService(resultRepo, attemptRepo, gradingRepo, log)
	examService := service.NewExamService(examRepo, questionRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Attempt:      handler.NewAttemptHandler(attemptService, answerService, resultService),
		AdminAttempt: handler.NewAdminAttemptHandler(attemptService),
		Exam:         handler.NewExamHandler(examService),
		Grading:      handler.NewGradingHandler(gradingService),
		Result:       handler.NewResultHandler(resultService),
		WS:           handler.NewWSHandler(attemptService, hub, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	expiryWorker := worker.NewExpiryWorker(cfg, pool, attemptRepo, eventRepo, proctorRepo, hub, rdb, log)
	gradingWorker := worker.NewGradingWorker(gradingService, rdb, log)

	go expiryWorker.Start(workerCtx)
	go gradingWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and let in-flight sweeps finish.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
