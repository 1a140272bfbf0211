package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/provexa/provexa-backend/internal/response"
	"github.com/provexa/provexa-backend/internal/service"
)

// failFromService translates a service error into the uniform error
// envelope. Unrecognized errors become 500 INTERNAL_ERROR.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrSessionAlreadyActive):
		response.Fail(c, http.StatusConflict, response.ErrSessionActive)

	case errors.Is(err, service.ErrExamNotAvailable):
		response.Fail(c, http.StatusNotFound, response.ErrExamNotAvailable)
	case errors.Is(err, service.ErrExamWindowClosed):
		response.Fail(c, http.StatusForbidden, response.ErrExamWindowClosed)
	case errors.Is(err, service.ErrInvalidAccessCode):
		response.Fail(c, http.StatusForbidden, response.ErrInvalidAccessCode)
	case errors.Is(err, service.ErrAttemptLimitExceeded):
		response.Fail(c, http.StatusForbidden, response.ErrAttemptLimitExceeded)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)

	case errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrAttemptNotActive):
		response.Fail(c, http.StatusConflict, response.ErrAttemptNotActive)
	case errors.Is(err, service.ErrAttemptExpired):
		response.Fail(c, http.StatusConflict, response.ErrAttemptExpired)
	case errors.Is(err, service.ErrQuestionNotInAttempt):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrQuestionNotInAttempt)

	case errors.Is(err, service.ErrAttemptNotGradable):
		response.Fail(c, http.StatusConflict, response.ErrAttemptNotActive)
	case errors.Is(err, service.ErrGradingNotComplete):
		response.Fail(c, http.StatusConflict, response.ErrGradingNotComplete)
	case errors.Is(err, service.ErrManualItemsPending):
		response.Fail(c, http.StatusConflict, response.ErrManualItemsPending)
	case errors.Is(err, service.ErrScoreOutOfRange):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrScoreOutOfRange)

	case errors.Is(err, service.ErrResultNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrResultNotPublished):
		response.Fail(c, http.StatusNotFound, response.ErrResultNotPublished)

	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrConflict):
		response.Fail(c, http.StatusConflict, response.ErrConflict)

	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
