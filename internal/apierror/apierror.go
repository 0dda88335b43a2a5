// Package apierror provides the error envelope returned to HTTP clients and the
// typed business errors raised by the core services.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Kind   string `json:"kind,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erro de validação", Fields: fields}
}

// ── Business errors ──────────────────────────────────────────────────────────

// Kind classifies a rejected operation.
type Kind string

const (
	// KindPrecondition: the operation needs state that is absent (no shift, empty surface, no actor).
	KindPrecondition Kind = "precondition"
	// KindValidation: an argument is malformed.
	KindValidation Kind = "validation"
	// KindConflict: the operation collides with current state (duplicate code, no session).
	KindConflict Kind = "conflict"
	// KindNotFound: a referenced entity does not exist.
	KindNotFound Kind = "not_found"
)

// Error is a business rejection. The state it refers to is left unchanged.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func Precondition(format string, args ...any) error {
	return &Error{Kind: KindPrecondition, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or "" when err is not a business error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a business error of kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

// HTTPStatus maps a business error to its response status. Anything that is
// not a business error is an internal failure.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindPrecondition, KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FromError builds the envelope for err. Internal errors are masked.
func FromError(err error) *APIError {
	k := KindOf(err)
	if k == "" {
		return New("Erro interno do servidor")
	}
	return &APIError{Detail: err.Error(), Kind: string(k)}
}
