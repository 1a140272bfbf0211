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

// ExamHandler handles the admin exam-authoring endpoints.
type ExamHandler struct {
	exams *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(exams *service.ExamService) *ExamHandler {
	return &ExamHandler{exams: exams}
}

// Create godoc
// POST /api/v1/admin/exams
func (h *ExamHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.exams.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, exam)
}

// Update godoc
// PUT /api/v1/admin/exams/:exam_id
func (h *ExamHandler) Update(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.exams.Update(c.Request.Context(), examID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, exam)
}

// Get godoc
// GET /api/v1/admin/exams/:exam_id
func (h *ExamHandler) Get(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	exam, err := h.exams.Get(c.Request.Context(), examID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, exam)
}

// List godoc
// GET /api/v1/admin/exams
func (h *ExamHandler) List(c *gin.Context) {
	page, perPage := paginationParams(c)

	exams, total, err := h.exams.List(c.Request.Context(), page, perPage)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"exams": exams},
		response.NewPagination(page, perPage, total))
}

// Publish godoc
// POST /api/v1/admin/exams/:exam_id/publish
func (h *ExamHandler) Publish(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	exam, err := h.exams.Publish(c.Request.Context(), examID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, exam)
}

// ReplaceQuestions godoc
// PUT /api/v1/admin/exams/:exam_id/questions
// Swaps the whole question set; running attempts keep their snapshots.
func (h *ExamHandler) ReplaceQuestions(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	var req model.ReplaceQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, err := h.exams.ReplaceQuestions(c.Request.Context(), examID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// Questions godoc
// GET /api/v1/admin/exams/:exam_id/questions
func (h *ExamHandler) Questions(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	questions, err := h.exams.Questions(c.Request.Context(), examID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// Assign godoc
// POST /api/v1/admin/exams/:exam_id/assignments
func (h *ExamHandler) Assign(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	var req struct {
		CandidateID int `json:"candidate_id" binding:"required,min=1"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.exams.Assign(c.Request.Context(), examID, req.CandidateID); err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{})
}

// GrantOverride godoc
// POST /api/v1/admin/exams/:exam_id/attempt-overrides
// Grants one candidate attempts beyond the exam limit.
func (h *ExamHandler) GrantOverride(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	var req struct {
		CandidateID   int `json:"candidate_id" binding:"required,min=1"`
		ExtraAttempts int `json:"extra_attempts" binding:"required,min=1,max=10"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.exams.GrantOverride(c.Request.Context(), examID, req.CandidateID, req.ExtraAttempts, claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{})
}
