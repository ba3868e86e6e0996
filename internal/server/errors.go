// Package server provides the HTTP API for document generation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/jobfit/internal/pipeline"
	"github.com/jonathan/jobfit/internal/profile"
	"github.com/jonathan/jobfit/internal/usage"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		reqErr     *ErrValidation
		genValErr  *pipeline.ValidationError
		profValErr *profile.ValidationError
		storeErr   *usage.StoreError
		genErr     *pipeline.GenerationError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &reqErr), errors.As(err, &genValErr), errors.As(err, &profValErr),
		errors.Is(err, usage.ErrInvalidAccount):
		return http.StatusBadRequest
	case errors.Is(err, profile.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &storeErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &genErr) && genErr.Stage == pipeline.StageRender:
		// a print timeout is still a rendering failure
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the error text safe to return to clients. Server-side
// failures are reported generically; details stay in the logs.
func publicMessage(err error, status int) string {
	if status < http.StatusInternalServerError {
		return err.Error()
	}
	switch status {
	case http.StatusServiceUnavailable:
		return "usage store unavailable"
	case http.StatusGatewayTimeout:
		return "generation timed out"
	case http.StatusBadGateway:
		return "document rendering failed"
	default:
		return "internal error"
	}
}
