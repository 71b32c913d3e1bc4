package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error for status mapping.
type Kind string

const (
	KindValidation            Kind = "validation_failed"
	KindUnauthenticated       Kind = "unauthenticated"
	KindForbidden             Kind = "forbidden"
	KindNotFound              Kind = "not_found"
	KindConflict              Kind = "conflict"
	KindPredictionRequest     Kind = "prediction_request"
	KindPredictionUpstream    Kind = "prediction_upstream"
	KindPredictionUnreachable Kind = "prediction_unreachable"
	KindInternal              Kind = "internal"
)

// FieldError is a single violated constraint on a named input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError carries a kind, a client-safe message and an optional cause.
type AppError struct {
	Kind    Kind         `json:"kind"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
	// UpstreamStatus holds the remote status for prediction_upstream errors.
	UpstreamStatus int   `json:"-"`
	Err            error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to an HTTP status. Credential failures are
// always 401, authorization failures always 403.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindPredictionUpstream:
		return http.StatusBadGateway
	case KindPredictionUnreachable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func NewValidation(fields []FieldError) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: "validation failed",
		Fields:  fields,
	}
}

func NewUnauthenticated(message string, err error) *AppError {
	if message == "" {
		message = "unauthenticated"
	}
	return &AppError{Kind: KindUnauthenticated, Message: message, Err: err}
}

func NewForbidden(message string) *AppError {
	if message == "" {
		message = "access denied"
	}
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewNotFound(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func NewConflict(message string, err error) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Err: err}
}

func NewPredictionRequest(err error) *AppError {
	return &AppError{Kind: KindPredictionRequest, Message: "failed to build prediction request", Err: err}
}

func NewPredictionUpstream(status int, message string) *AppError {
	return &AppError{
		Kind:           KindPredictionUpstream,
		Message:        fmt.Sprintf("prediction service error (%d): %s", status, message),
		UpstreamStatus: status,
	}
}

func NewPredictionUnreachable(err error) *AppError {
	return &AppError{Kind: KindPredictionUnreachable, Message: "prediction service unreachable", Err: err}
}

func NewInternal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "internal server error", Err: err}
}

// FromError returns err as an *AppError, wrapping unknown errors as internal.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal(err)
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
