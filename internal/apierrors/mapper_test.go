package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"referral-graph/internal/referral/notifier"
	referralProcessor "referral-graph/internal/referral/processor"

	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	storageCause := errors.New("database is locked")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid contact", referralProcessor.ErrInvalidContactID, http.StatusBadRequest, CodeInvalidContactID},
		{"empty observe contact", notifier.ErrEmptyContactID, http.StatusBadRequest, CodeInvalidContactID},
		{"self referral", referralProcessor.ErrSelfReferral, http.StatusBadRequest, CodeSelfReferral},
		{"already referred", referralProcessor.ErrAlreadyReferred, http.StatusConflict, CodeAlreadyReferred},
		{"back reference", referralProcessor.ErrInvalidReferralRelationship, http.StatusUnprocessableEntity, CodeInvalidReferralRelationship},
		{"update without record", referralProcessor.ErrNoExistingRecord, http.StatusNotFound, CodeNoExistingRecord},
		{"not found", referralProcessor.ErrNotFound, http.StatusNotFound, CodeReferralNotFound},
		{"wrapped rule", fmt.Errorf("create: %w", referralProcessor.ErrAlreadyReferred), http.StatusConflict, CodeAlreadyReferred},
		{"save failed", fmt.Errorf("%w: %w", referralProcessor.ErrSaveFailed, storageCause), http.StatusInternalServerError, CodeStorageError},
		{"fetch failed", fmt.Errorf("%w: %w", referralProcessor.ErrFetchFailed, storageCause), http.StatusInternalServerError, CodeStorageError},
		{"delete failed", fmt.Errorf("%w: %w", referralProcessor.ErrDeleteFailed, storageCause), http.StatusInternalServerError, CodeStorageError},
		{"notifier closed", notifier.ErrNotifierClosed, http.StatusServiceUnavailable, CodeNotifierUnavailable},
		{"unknown", errors.New("something odd"), http.StatusInternalServerError, CodeInternalError},
		{"already mapped", Forbidden(CodeResetDisabled, "nope"), http.StatusForbidden, CodeResetDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	assert.Nil(t, MapError(nil))
}

func TestMapError_HidesInternalDetails(t *testing.T) {
	cause := errors.New("pq: password authentication failed for user \"referral\"")
	got := MapError(fmt.Errorf("%w: %w", referralProcessor.ErrFetchFailed, cause))

	assert.NotContains(t, got.Message, "password")
	assert.ErrorIs(t, got, cause)
}
