package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated is returned when the request carries no user identity.
	ErrUnauthenticated = errors.New("user identity required")
	// ErrForbidden is returned when the caller does not own the requested resource.
	ErrForbidden = errors.New("access denied")
	// ErrInsufficientCredits is returned when the caller has no credits left.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrSourceNotReady is returned when a source has not finished processing.
	ErrSourceNotReady = errors.New("source is not ready")
	// ErrExternalService is returned when an external service call fails.
	ErrExternalService = errors.New("external service error")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrInvalidInput) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// fromValidator converts the first failed struct tag into a ValidationError.
func fromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return WrapError(err, "failed to validate request")
	}
	e := verrs[0]
	return &ValidationError{
		Field:   e.Field(),
		Message: fmt.Sprintf("failed on '%s' tag", e.Tag()),
	}
}
