// Package apperr defines the closed set of failure kinds raised by the
// service. Domain logic tags failures with a Kind and a human-readable
// message; the HTTP layer owns the mapping to status codes and response
// envelopes. Nothing outside the translator inspects concrete error
// types.
package apperr

import "errors"

// Kind categorises a failure independent of the transport layer.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindUnauthorized       Kind = "unauthorized"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindConflict           Kind = "conflict"
	KindNotFound           Kind = "not_found"
	KindTooManyRequests    Kind = "too_many_requests"
	KindInternal           Kind = "internal"
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error is a tagged failure. Fields is only populated for validation
// failures.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two apperr values by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates a tagged error with the given kind and message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap tags an underlying error. An already-tagged error keeps its
// original kind so the outermost layer never reclassifies a failure.
func Wrap(err error, kind Kind, msg string) *Error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Kind: existing.Kind, Message: msg, Fields: existing.Fields, Err: err}
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Validation creates a validation failure carrying per-field details.
func Validation(msg string, fields []FieldError) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// KindOf extracts the kind of err, or KindInternal for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// FieldsOf returns the field errors attached to err, if any.
func FieldsOf(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
