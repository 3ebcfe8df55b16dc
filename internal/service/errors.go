package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonnyWalker81/innerlog/backend/internal/calendar"
)

// FieldError describes one invalid input field
type FieldError struct {
	Field   string
	Message string
	Code    string
}

// ValidationError reports malformed or out-of-range input. It is never
// retried.
type ValidationError struct {
	Fields []FieldError
	Err    error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, code, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message, Code: code}}}
}

// NotFoundError reports an unknown resource
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// GracePeriodExhaustedError is the expected outcome of asking for a grace
// period when the monthly allowance is spent.
type GracePeriodExhaustedError struct {
	Used      int
	Max       int
	Remaining int
	ResetsOn  *time.Time
}

func (e *GracePeriodExhaustedError) Error() string {
	if e.ResetsOn != nil {
		return fmt.Sprintf("grace periods exhausted (%d/%d used, resets on %s)", e.Used, e.Max, calendar.DayKey(*e.ResetsOn))
	}
	return fmt.Sprintf("grace periods exhausted (%d/%d used)", e.Used, e.Max)
}

// ConcurrencyConflictError is returned when a streak mutation kept losing
// the optimistic version check.
type ConcurrencyConflictError struct {
	UserID string
	Err    error
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("concurrent update of streak for user %s", e.UserID)
}

func (e *ConcurrencyConflictError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is or wraps a *ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err is or wraps a *NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
