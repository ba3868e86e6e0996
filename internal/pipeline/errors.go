package pipeline

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Generation stages reported in progress events and errors
const (
	StageUsage      = "usage"
	StageProfile    = "profile"
	StageJobDetails = "job_details"
	StageTailoring  = "tailoring"
	StageRender     = "render"
)

// ValidationError reports invalid request input. No quota is consumed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// GenerationError is a hard failure of one stage of an approved generation.
type GenerationError struct {
	Stage        string
	GenerationID string
	Cause        error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation %s failed at %s: %v", e.GenerationID, e.Stage, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// validationError converts a validator failure into a ValidationError naming
// the first offending field.
func validationError(err error) *ValidationError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed %q constraint", fe.Tag()),
		}
	}
	return &ValidationError{Message: err.Error()}
}
