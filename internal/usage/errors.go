package usage

import (
	"errors"
	"fmt"
)

// ErrInvalidAccount is returned when a check is made without an account ID
var ErrInvalidAccount = errors.New("account id is required")

// StoreError represents a failure of the counter store or the tier collaborator.
// The gate cannot decide without them, so it is a hard error for the caller.
type StoreError struct {
	Op        string
	AccountID string
	Cause     error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("usage %s failed for account %s: %v", e.Op, e.AccountID, e.Cause)
	}
	return fmt.Sprintf("usage %s failed for account %s", e.Op, e.AccountID)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// CatalogError reports an invalid plan catalogue
type CatalogError struct {
	Source  string
	Message string
	Cause   error
}

func (e *CatalogError) Error() string {
	msg := fmt.Sprintf("invalid plan catalog %s: %s", e.Source, e.Message)
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *CatalogError) Unwrap() error {
	return e.Cause
}
