package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/provexa/provexa-backend/internal/middleware"
	"github.com/provexa/provexa-backend/internal/response"
	"github.com/provexa/provexa-backend/internal/service"
)

// ResultHandler handles the admin result-publishing endpoints.
type ResultHandler struct {
	results *service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(results *service.ResultService) *ResultHandler {
	return &ResultHandler{results: results}
}

// ListByExam godoc
// GET /api/v1/admin/exams/:exam_id/results
func (h *ResultHandler) ListByExam(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	results, err := h.results.ListByExam(c.Request.Context(), examID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// Publish godoc
// POST /api/v1/admin/results/:result_id/publish
func (h *ResultHandler) Publish(c *gin.Context) {
	claims := middleware.GetClaims(c)
	resultID, ok := parseUUIDParam(c, "result_id")
	if !ok {
		return
	}

	result, err := h.results.Publish(c.Request.Context(), claims.UserID, resultID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Unpublish godoc
// POST /api/v1/admin/results/:result_id/unpublish
func (h *ResultHandler) Unpublish(c *gin.Context) {
	claims := middleware.GetClaims(c)
	resultID, ok := parseUUIDParam(c, "result_id")
	if !ok {
		return
	}

	result, err := h.results.Unpublish(c.Request.Context(), claims.UserID, resultID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// BulkPublish godoc
// POST /api/v1/admin/exams/:exam_id/results/publish
// Publishes every finalized result of the exam, reporting skips.
func (h *ResultHandler) BulkPublish(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	outcome, err := h.results.BulkPublish(c.Request.Context(), claims.UserID, examID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, outcome)
}
