package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/provexa/provexa-backend/internal/middleware"
	"github.com/provexa/provexa-backend/internal/model"
	"github.com/provexa/provexa-backend/internal/response"
	"github.com/provexa/provexa-backend/internal/service"
	"github.com/provexa/provexa-backend/internal/validator"
)

// AttemptHandler handles the candidate-facing attempt endpoints.
type AttemptHandler struct {
	attempts *service.AttemptService
	answers  *service.AnswerService
	results  *service.ResultService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attempts *service.AttemptService, answers *service.AnswerService, results *service.ResultService) *AttemptHandler {
	return &AttemptHandler{attempts: attempts, answers: answers, results: results}
}

// Start godoc
// POST /api/v1/candidate/exams/:exam_id/attempts
// Starts a new attempt, or resumes the active one. Idempotent.
func (h *AttemptHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	// The body is optional; only access-code exams need one.
	var req model.StartAttemptRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	deviceInfo := optionalHeader(c, "User-Agent")
	ip := c.ClientIP()

	outcome, err := h.attempts.StartOrResume(c.Request.Context(), claims.UserID, examID, &req, deviceInfo, &ip)
	if err != nil {
		failFromService(c, err)
		return
	}

	status := http.StatusCreated
	if outcome.Resumed {
		status = http.StatusOK
	}
	response.Success(c, status, outcome)
}

// Timer godoc
// GET /api/v1/candidate/attempts/:attempt_id/timer
// Server-authoritative countdown for polling clients.
func (h *AttemptHandler) Timer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	state, err := h.attempts.Timer(c.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// Paper godoc
// GET /api/v1/candidate/attempts/:attempt_id/questions
func (h *AttemptHandler) Paper(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	questions, err := h.attempts.Paper(c.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// SaveAnswer godoc
// PUT /api/v1/candidate/attempts/:attempt_id/answers
// Upserts one answer; saving again replaces the previous one.
func (h *AttemptHandler) SaveAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	var req model.SaveAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ans, err := h.answers.Save(c.Request.Context(), claims.UserID, attemptID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, ans)
}

// BulkSaveAnswers godoc
// PUT /api/v1/candidate/attempts/:attempt_id/answers/bulk
// Saves a batch, tolerating per-question failures.
func (h *AttemptHandler) BulkSaveAnswers(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	var req model.BulkSaveAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	outcome, err := h.answers.BulkSave(c.Request.Context(), claims.UserID, attemptID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, outcome)
}

// ListAnswers godoc
// GET /api/v1/candidate/attempts/:attempt_id/answers
func (h *AttemptHandler) ListAnswers(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	answers, err := h.answers.List(c.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"answers": answers})
}

// Submit godoc
// POST /api/v1/candidate/attempts/:attempt_id/submit
func (h *AttemptHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	attempt, err := h.attempts.Submit(c.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}

	total, answered, err := h.answers.Progress(c.Request.Context(), attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"attempt":            attempt,
		"total_questions":    total,
		"answered_questions": answered,
		"message":            "Attempt submitted successfully.",
	})
}

// Result godoc
// GET /api/v1/candidate/attempts/:attempt_id/result
// Visible only once an admin has published it.
func (h *AttemptHandler) Result(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	result, err := h.results.ForCandidate(c.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ReportActivity godoc
// POST /api/v1/candidate/attempts/:attempt_id/events
// Records a proctoring signal (tab switch, navigation) from the client.
func (h *AttemptHandler) ReportActivity(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	var req struct {
		EventType string                 `json:"event_type" binding:"required,oneof=TAB_SWITCH NAVIGATION"`
		Payload   map[string]interface{} `json:"payload" binding:"omitempty"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.attempts.RecordActivity(c.Request.Context(), claims.UserID, attemptID,
		model.AttemptEventType(req.EventType), req.Payload)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// parseUUIDParam reads a uuid path parameter, failing the request with
// INVALID_ID when it does not parse.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func optionalHeader(c *gin.Context, name string) *string {
	if v := c.GetHeader(name); v != "" {
		return &v
	}
	return nil
}
