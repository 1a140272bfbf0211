package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/provexa/provexa-backend/internal/middleware"
	"github.com/provexa/provexa-backend/internal/model"
	"github.com/provexa/provexa-backend/internal/response"
	"github.com/provexa/provexa-backend/internal/service"
	"github.com/provexa/provexa-backend/internal/validator"
)

// AdminAttemptHandler handles the proctor and admin attempt endpoints.
type AdminAttemptHandler struct {
	attempts *service.AttemptService
}

// NewAdminAttemptHandler creates a new AdminAttemptHandler.
func NewAdminAttemptHandler(attempts *service.AttemptService) *AdminAttemptHandler {
	return &AdminAttemptHandler{attempts: attempts}
}

// Get godoc
// GET /api/v1/admin/attempts/:attempt_id
func (h *AdminAttemptHandler) Get(c *gin.Context) {
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	attempt, err := h.attempts.Get(c.Request.Context(), attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, attempt)
}

// ListByExam godoc
// GET /api/v1/admin/exams/:exam_id/attempts
func (h *AdminAttemptHandler) ListByExam(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	page, perPage := paginationParams(c)
	attempts, total, err := h.attempts.ListByExam(c.Request.Context(), examID, page, perPage)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": attempts},
		response.NewPagination(page, perPage, total))
}

// Events godoc
// GET /api/v1/admin/attempts/:attempt_id/events
// The append-only attempt audit log, oldest first.
func (h *AdminAttemptHandler) Events(c *gin.Context) {
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	events, err := h.attempts.Events(c.Request.Context(), attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"events": events})
}

// ForceSubmit godoc
// POST /api/v1/admin/attempts/:attempt_id/force-submit
func (h *AdminAttemptHandler) ForceSubmit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	var req model.ForceSubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.attempts.ForceSubmit(c.Request.Context(), claims.UserID, attemptID, req.Reason)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, attempt)
}

// Cancel godoc
// POST /api/v1/admin/attempts/:attempt_id/cancel
func (h *AdminAttemptHandler) Cancel(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	var req model.CancelAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.attempts.Cancel(c.Request.Context(), claims.UserID, attemptID, req.Reason)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, attempt)
}

// ExtendTime godoc
// POST /api/v1/admin/attempts/:attempt_id/extend-time
func (h *AdminAttemptHandler) ExtendTime(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	var req model.ExtendTimeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.attempts.ExtendTime(c.Request.Context(), claims.UserID, attemptID, req.ExtraMinutes)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, attempt)
}

// Warn godoc
// POST /api/v1/admin/attempts/:attempt_id/warning
// Pushes a proctoring warning to the candidate's live connection.
func (h *AdminAttemptHandler) Warn(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	var req model.WarnAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.attempts.Warn(c.Request.Context(), claims.UserID, attemptID, req.Message); err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Warning delivered."})
}

// paginationParams reads ?page= and ?per_page= with sane bounds.
func paginationParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}
