package service

import "errors"

// Domain errors returned by services. Handlers map these onto response
// error codes, so the mapping lives in exactly one place per handler.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrSessionAlreadyActive = errors.New("another session is already active, please contact an administrator to reset it")

	ErrExamNotAvailable     = errors.New("exam not available")
	ErrExamWindowClosed     = errors.New("exam window is closed")
	ErrInvalidAccessCode    = errors.New("invalid access code")
	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded")
	ErrNoQuestions          = errors.New("exam has no questions")

	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAttemptNotActive     = errors.New("attempt is not active")
	ErrAttemptExpired       = errors.New("attempt has expired")
	ErrQuestionNotInAttempt = errors.New("question is not part of this attempt")

	ErrAttemptNotGradable = errors.New("attempt is not in a gradable state")
	ErrGradingNotComplete = errors.New("grading session is not complete")
	ErrManualItemsPending = errors.New("manual grading items are still pending")
	ErrScoreOutOfRange    = errors.New("score is outside the allowed range")

	ErrResultNotFound     = errors.New("result not found")
	ErrResultNotPublished = errors.New("result is not published")

	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("resource state conflict")
)
