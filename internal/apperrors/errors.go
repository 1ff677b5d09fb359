package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across services.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrActivationMismatch = errors.New("activation code mismatch")
)

// NotFoundError signals that a referenced entity is absent. It short-circuits
// the operation with no side effect and maps to a 404 at the transport layer.
type NotFoundError struct {
	Resource string
}

func NewNotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// ValidationError carries per-field messages so the form layer can mark each
// offending field invalid instead of showing one opaque message.
type ValidationError struct {
	Fields map[string]string
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func NewFieldValidation(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AuthorizationError signals a denied credential check (e.g. wrong current
// password). The operation must not have mutated any state.
type AuthorizationError struct {
	Reason string
}

func NewAuthorization(reason string) *AuthorizationError {
	return &AuthorizationError{Reason: reason}
}

func (e *AuthorizationError) Error() string {
	return e.Reason
}

// PersistenceError wraps an unexpected storage failure. Handlers log it and
// surface a generic fault; the underlying detail never reaches the caller.
type PersistenceError struct {
	Op  string
	Err error
}

func NewPersistence(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

// ValidationFields extracts the field→message map when err is a
// ValidationError, or nil otherwise.
func ValidationFields(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
