package models

import (
	"errors"
	"strings"
)

// Error kinds. Every error surfaced by the client wraps exactly one of them.
var (
	ErrValidation = errors.New("validation failed")
	ErrAuth       = errors.New("authentication failed")
	ErrNotFound   = errors.New("not found")
	ErrNetwork    = errors.New("network error")
	ErrServer     = errors.New("server error")
)

// APIError is a failed backend call.
type APIError struct {
	Kind   error
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Kind.Error()
}

func (e *APIError) Unwrap() error { return e.Kind }

// ValidationError reports required input that was missing or malformed.
// It is produced locally and never reaches the network.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Detail returns the backend-provided detail carried by err, if any.
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return strings.TrimSpace(apiErr.Detail)
	}
	return ""
}

// Message returns the backend detail carried by err, or fallback when there
// is none.
func Message(err error, fallback string) string {
	if d := Detail(err); d != "" {
		return d
	}
	return fallback
}
