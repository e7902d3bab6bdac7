// Package services implements the business logic layer between HTTP handlers
// and the generic repository. This file centralizes common service-level
// error values and types so that they can be consistently returned by
// service methods and checked by callers.
//
// Translation into user-facing envelopes and HTTP status codes is performed
// at the handler layer.
package services

import "errors"

// ErrItemNotFound indicates that the requested item does not exist or is
// hidden by the soft-delete filter.
var ErrItemNotFound = errors.New("item not found")

// FieldError describes one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Target  string `json:"target,omitempty"`
}

// ValidationError is returned when a payload fails a validation hook or a
// structural check before reaching storage.
type ValidationError struct {
	Message string
	Details []FieldError
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError with optional field details.
func NewValidationError(message string, details ...FieldError) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
