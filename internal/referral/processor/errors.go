package processor

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyReferred             = errors.New("contact already has a referrer")
	ErrNoExistingRecord            = errors.New("no referral record exists for contact")
	ErrInvalidReferralRelationship = errors.New("referrer is already referred by this contact")
	ErrSelfReferral                = errors.New("contact cannot refer itself")
	ErrInvalidContactID            = errors.New("contact id is required")
	ErrNotFound                    = errors.New("referral record not found")

	// Storage failures wrap the underlying cause: errors.Is matches both.
	ErrSaveFailed   = errors.New("failed to save referral record")
	ErrFetchFailed  = errors.New("failed to fetch referral record")
	ErrDeleteFailed = errors.New("failed to delete referral record")
)

// ruleViolations are returned to callers unwrapped.
var ruleViolations = []error{
	ErrAlreadyReferred,
	ErrNoExistingRecord,
	ErrInvalidReferralRelationship,
	ErrSelfReferral,
	ErrInvalidContactID,
	ErrNotFound,
}

// wrapStorageError tags err with kind unless it is already a rule violation.
func wrapStorageError(kind, err error) error {
	if err == nil {
		return nil
	}
	for _, v := range ruleViolations {
		if errors.Is(err, v) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", kind, err)
}
