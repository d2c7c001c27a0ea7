package apierrors

import (
	"errors"
	"net/http"

	"referral-graph/internal/referral/notifier"
	referralProcessor "referral-graph/internal/referral/processor"
)

// MapError converts domain/processor errors to APIErrors.
// If the error is already an APIError, it returns it as-is.
// If the error is unknown, it returns a sanitized InternalError (500).
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	// Rule violations
	case errors.Is(err, referralProcessor.ErrInvalidContactID),
		errors.Is(err, notifier.ErrEmptyContactID):
		return BadRequest(CodeInvalidContactID, "contact_id is required")

	case errors.Is(err, referralProcessor.ErrSelfReferral):
		return BadRequest(CodeSelfReferral, "A contact cannot refer itself")

	case errors.Is(err, referralProcessor.ErrAlreadyReferred):
		return Conflict(CodeAlreadyReferred, "Contact already has a referrer")

	case errors.Is(err, referralProcessor.ErrInvalidReferralRelationship):
		return UnprocessableEntity(CodeInvalidReferralRelationship, "Referrer is already referred by this contact")

	case errors.Is(err, referralProcessor.ErrNoExistingRecord):
		return NotFound(CodeNoExistingRecord, "No referral record exists for this contact")

	case errors.Is(err, referralProcessor.ErrNotFound):
		return NotFound(CodeReferralNotFound, "Referral record not found")

	// Storage failures
	case errors.Is(err, referralProcessor.ErrSaveFailed),
		errors.Is(err, referralProcessor.ErrFetchFailed),
		errors.Is(err, referralProcessor.ErrDeleteFailed):
		return &APIError{
			StatusCode: http.StatusInternalServerError,
			Code:       CodeStorageError,
			Message:    "The referral store is temporarily unavailable. Please try again later.",
			Err:        err,
		}

	case errors.Is(err, notifier.ErrNotifierClosed):
		return ServiceUnavailable(CodeNotifierUnavailable, "Server is shutting down", err)

	default:
		return InternalError(err)
	}
}
