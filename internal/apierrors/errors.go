package apierrors

import (
	"fmt"
	"net/http"
)

// Machine-readable error codes returned to API clients.
const (
	CodeInvalidInput                = "INVALID_INPUT"
	CodeInvalidContactID            = "INVALID_CONTACT_ID"
	CodeNotFound                    = "NOT_FOUND"
	CodeReferralNotFound            = "REFERRAL_NOT_FOUND"
	CodeAlreadyReferred             = "ALREADY_REFERRED"
	CodeNoExistingRecord            = "NO_EXISTING_RECORD"
	CodeInvalidReferralRelationship = "INVALID_REFERRAL_RELATIONSHIP"
	CodeSelfReferral                = "SELF_REFERRAL"
	CodeResetDisabled               = "RESET_DISABLED"
	CodeStorageError                = "STORAGE_ERROR"
	CodeLeaderboardUnavailable      = "LEADERBOARD_UNAVAILABLE"
	CodeNotifierUnavailable         = "NOTIFIER_UNAVAILABLE"
	CodeRateLimitExceeded           = "RATE_LIMIT_EXCEEDED"
	CodeInternalError               = "INTERNAL_ERROR"
)

// APIError is an error with an HTTP status and a client-safe message.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	// Err is the internal cause. It is logged, never sent to clients.
	Err error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// BadRequest creates a 400 error
func BadRequest(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, Code: code, Message: message}
}

// NotFound creates a 404 error
func NotFound(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusNotFound, Code: code, Message: message}
}

// Forbidden creates a 403 error
func Forbidden(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusForbidden, Code: code, Message: message}
}

// Conflict creates a 409 error
func Conflict(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusConflict, Code: code, Message: message}
}

// UnprocessableEntity creates a 422 error
func UnprocessableEntity(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusUnprocessableEntity, Code: code, Message: message}
}

// ServiceUnavailable creates a 503 error carrying the internal cause
func ServiceUnavailable(code, message string, err error) *APIError {
	return &APIError{StatusCode: http.StatusServiceUnavailable, Code: code, Message: message, Err: err}
}

// InternalError creates a sanitized 500 error - never exposes internal details
func InternalError(err error) *APIError {
	return &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternalError,
		Message:    "An internal error occurred. Please try again later.",
		Err:        err,
	}
}
