// Package apperr defines the error taxonomy shared by the domain services
// and maps each kind to an HTTP response for the echo handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ValidationError reports malformed or incomplete input. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for the given field.
func Validation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError reports a status change outside the allowed table.
type InvalidTransitionError struct {
	From    string
	To      string
	Allowed []string
}

func (e *InvalidTransitionError) Error() string {
	allowed := "none (terminal state)"
	if len(e.Allowed) > 0 {
		allowed = strings.Join(e.Allowed, ", ")
	}
	return fmt.Sprintf("cannot transition from %s to %s; allowed: %s", e.From, e.To, allowed)
}

// InvalidStateError reports a mutation attempted on a field frozen by the
// entity's current status.
type InvalidStateError struct {
	Status string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s (current status %s)", e.Reason, e.Status)
}

// NotFoundError reports an absent referenced entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NotFound builds a NotFoundError.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ExternalServiceError reports a failure of an external collaborator. It is
// transient and handled by degrading, never surfaced as a hard failure.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// ToHTTPError maps a domain error to an echo HTTP error with a
// machine-readable reason.
func ToHTTPError(err error) error {
	var (
		ve *ValidationError
		te *InvalidTransitionError
		se *InvalidStateError
		ne *NotFoundError
		xe *ExternalServiceError
	)
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{
			"reason": "validation_error", "detail": ve.Error(), "field": ve.Field,
		})
	case errors.As(err, &te):
		return echo.NewHTTPError(http.StatusConflict, map[string]string{
			"reason": "invalid_transition", "detail": te.Error(),
		})
	case errors.As(err, &se):
		return echo.NewHTTPError(http.StatusConflict, map[string]string{
			"reason": "invalid_state", "detail": se.Error(),
		})
	case errors.As(err, &ne):
		return echo.NewHTTPError(http.StatusNotFound, map[string]string{
			"reason": "not_found", "detail": ne.Error(),
		})
	case errors.As(err, &xe):
		return echo.NewHTTPError(http.StatusBadGateway, map[string]string{
			"reason": "external_service_error", "detail": xe.Error(),
		})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
