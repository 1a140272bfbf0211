package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/provexa/provexa-backend/internal/middleware"
	"github.com/provexa/provexa-backend/internal/model"
	"github.com/provexa/provexa-backend/internal/response"
	"github.com/provexa/provexa-backend/internal/service"
	"github.com/provexa/provexa-backend/internal/validator"
)

// GradingHandler handles the grading endpoints.
type GradingHandler struct {
	grading *service.GradingService
}

// NewGradingHandler creates a new GradingHandler.
func NewGradingHandler(grading *service.GradingService) *GradingHandler {
	return &GradingHandler{grading: grading}
}

// Initiate godoc
// POST /api/v1/admin/attempts/:attempt_id/grading
// Auto-grades a closed attempt. Idempotent: repeat calls return the
// existing session. Normally the queue worker does this; the endpoint
// covers on-demand grading and retry after queue loss.
func (h *GradingHandler) Initiate(c *gin.Context) {
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	session, err := h.grading.Initiate(c.Request.Context(), attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// SessionByAttempt godoc
// GET /api/v1/admin/attempts/:attempt_id/grading
func (h *GradingHandler) SessionByAttempt(c *gin.Context) {
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	session, err := h.grading.SessionByAttempt(c.Request.Context(), attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// GradedAnswers godoc
// GET /api/v1/admin/grading/:session_id/answers
func (h *GradingHandler) GradedAnswers(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "session_id")
	if !ok {
		return
	}

	answers, err := h.grading.GradedAnswers(c.Request.Context(), sessionID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"answers": answers})
}

// ManualGrade godoc
// POST /api/v1/admin/grading/:session_id/grade
func (h *GradingHandler) ManualGrade(c *gin.Context) {
	claims := middleware.GetClaims(c)
	sessionID, ok := parseUUIDParam(c, "session_id")
	if !ok {
		return
	}

	var req model.ManualGradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.grading.ManualGrade(c.Request.Context(), claims.UserID, sessionID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// BulkManualGrade godoc
// POST /api/v1/admin/grading/:session_id/grade/bulk
func (h *GradingHandler) BulkManualGrade(c *gin.Context) {
	claims := middleware.GetClaims(c)
	sessionID, ok := parseUUIDParam(c, "session_id")
	if !ok {
		return
	}

	var req model.BulkManualGradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	outcome, err := h.grading.BulkManualGrade(c.Request.Context(), claims.UserID, sessionID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, outcome)
}

// Complete godoc
// POST /api/v1/admin/grading/:session_id/complete
func (h *GradingHandler) Complete(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "session_id")
	if !ok {
		return
	}

	// The body is optional; an empty POST completes without forcing.
	var req model.CompleteGradingRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	session, err := h.grading.Complete(c.Request.Context(), sessionID, req.ForceComplete)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// Regrade godoc
// POST /api/v1/admin/grading/:session_id/regrade
// Corrects one graded answer after completion, with an audit entry.
func (h *GradingHandler) Regrade(c *gin.Context) {
	claims := middleware.GetClaims(c)
	sessionID, ok := parseUUIDParam(c, "session_id")
	if !ok {
		return
	}

	var req model.RegradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	outcome, err := h.grading.Regrade(c.Request.Context(), claims.UserID, sessionID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, outcome)
}
