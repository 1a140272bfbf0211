package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/provexa/provexa-backend/internal/config"
	"github.com/provexa/provexa-backend/internal/handler"
	"github.com/provexa/provexa-backend/internal/middleware"
	"github.com/provexa/provexa-backend/internal/response"
	"github.com/provexa/provexa-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Attempt      *handler.AttemptHandler
	AdminAttempt *handler.AdminAttemptHandler
	Exam         *handler.ExamHandler
	Grading      *handler.GradingHandler
	Result       *handler.ResultHandler
	WS           *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public) ────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/candidate/login", handlers.Auth.CandidateLogin)
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
	}

	// ─── 2. Candidate Group (JWT + Single Device) ──────────────────────
	candidateAPI := router.Group("/api/v1/candidate")
	candidateAPI.Use(
		middleware.RequireCandidateJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		candidateAPI.POST("/logout", handlers.Auth.CandidateLogout)

		candidateAPI.POST("/exams/:exam_id/attempts", handlers.Attempt.Start)

		candidateAPI.GET("/attempts/:attempt_id/timer", handlers.Attempt.Timer)
		candidateAPI.GET("/attempts/:attempt_id/questions", handlers.Attempt.Paper)
		candidateAPI.GET("/attempts/:attempt_id/answers", handlers.Attempt.ListAnswers)
		candidateAPI.PUT("/attempts/:attempt_id/answers", handlers.Attempt.SaveAnswer)
		candidateAPI.PUT("/attempts/:attempt_id/answers/bulk", handlers.Attempt.BulkSaveAnswers)
		candidateAPI.POST("/attempts/:attempt_id/events", handlers.Attempt.ReportActivity)
		candidateAPI.POST("/attempts/:attempt_id/submit", handlers.Attempt.Submit)
		candidateAPI.GET("/attempts/:attempt_id/result", handlers.Attempt.Result)
	}

	// ─── 3. WebSocket Group (Candidate WS Auth) ────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireCandidateWSAuth(authService))
	{
		ws.GET("/attempts/:attempt_id/stream", handlers.WS.AttemptStream)
	}

	// ─── 4. Admin Group (Admin JWT) ────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Exam authoring.
		adminAPI.POST("/exams", handlers.Exam.Create)
		adminAPI.GET("/exams", handlers.Exam.List)
		adminAPI.GET("/exams/:exam_id", handlers.Exam.Get)
		adminAPI.PUT("/exams/:exam_id", handlers.Exam.Update)
		adminAPI.POST("/exams/:exam_id/publish", handlers.Exam.Publish)
		adminAPI.GET("/exams/:exam_id/questions", handlers.Exam.Questions)
		adminAPI.PUT("/exams/:exam_id/questions", handlers.Exam.ReplaceQuestions)
		adminAPI.POST("/exams/:exam_id/assignments", handlers.Exam.Assign)
		adminAPI.POST("/exams/:exam_id/attempt-overrides", handlers.Exam.GrantOverride)

		// Attempt oversight.
		adminAPI.GET("/exams/:exam_id/attempts", handlers.AdminAttempt.ListByExam)
		adminAPI.GET("/attempts/:attempt_id", handlers.AdminAttempt.Get)
		adminAPI.GET("/attempts/:attempt_id/events", handlers.AdminAttempt.Events)
		adminAPI.POST("/attempts/:attempt_id/force-submit", handlers.AdminAttempt.ForceSubmit)
		adminAPI.POST("/attempts/:attempt_id/cancel", handlers.AdminAttempt.Cancel)
		adminAPI.POST("/attempts/:attempt_id/extend-time", handlers.AdminAttempt.ExtendTime)
		adminAPI.POST("/attempts/:attempt_id/warning", handlers.AdminAttempt.Warn)

		// Grading.
		adminAPI.POST("/attempts/:attempt_id/grading", handlers.Grading.Initiate)
		adminAPI.GET("/attempts/:attempt_id/grading", handlers.Grading.SessionByAttempt)
		adminAPI.GET("/grading/:session_id/answers", handlers.Grading.GradedAnswers)
		adminAPI.POST("/grading/:session_id/grade", handlers.Grading.ManualGrade)
		adminAPI.POST("/grading/:session_id/grade/bulk", handlers.Grading.BulkManualGrade)
		adminAPI.POST("/grading/:session_id/complete", handlers.Grading.Complete)
		adminAPI.POST("/grading/:session_id/regrade", handlers.Grading.Regrade)

		// Results.
		adminAPI.GET("/exams/:exam_id/results", handlers.Result.ListByExam)
		adminAPI.POST("/exams/:exam_id/results/publish", handlers.Result.BulkPublish)
		adminAPI.POST("/results/:result_id/publish", handlers.Result.Publish)
		adminAPI.POST("/results/:result_id/unpublish", handlers.Result.Unpublish)

		// Session administration.
		adminAPI.DELETE("/candidates/:candidate_id/session", handlers.Auth.ResetCandidateSession)
	}

	return router
}
