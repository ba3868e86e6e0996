// Package profile loads candidate profiles and applies the narrow skill write path.
package profile

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an account has no stored profile
var ErrNotFound = errors.New("profile not found")

// LoadError represents an error during file I/O or JSON parsing
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("load error: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// NormalizationError represents a profile that cannot be normalized
type NormalizationError struct {
	Message string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalization error: %s", e.Message)
}

// ValidationError represents invalid caller input. Nothing is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
