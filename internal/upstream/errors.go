package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNetwork         ErrorCode = "NETWORK_ERROR"
	ErrCodeTransition      ErrorCode = "TRANSITION_ERROR"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeUnauthenticated ErrorCode = "UNAUTHENTICATED"
	ErrCodeDecode          ErrorCode = "DECODE_ERROR"
	ErrCodeConflict        ErrorCode = "CONFLICT"
	ErrCodeUpstream        ErrorCode = "UPSTREAM_ERROR"
)

// Error is the taxonomy every upstream failure is folded into. Retryable
// marks transient failures the operator may simply re-issue.
type Error struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Retryable  bool
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func newError(code ErrorCode, message string, status int, retryable bool, cause error) *Error {
	return &Error{Code: code, Message: message, StatusCode: status, Retryable: retryable, cause: cause}
}

func NetworkError(message string, cause error) *Error {
	return newError(ErrCodeNetwork, message, http.StatusBadGateway, true, cause)
}

func TransitionError(message string) *Error {
	return newError(ErrCodeTransition, message, http.StatusBadRequest, false, nil)
}

func NotFoundError(message string) *Error {
	return newError(ErrCodeNotFound, message, http.StatusNotFound, false, nil)
}

func UnauthenticatedError(message string) *Error {
	return newError(ErrCodeUnauthenticated, message, http.StatusUnauthorized, false, nil)
}

func DecodeError(message string, cause error) *Error {
	return newError(ErrCodeDecode, message, http.StatusBadGateway, false, cause)
}

func ConflictError(message string) *Error {
	return newError(ErrCodeConflict, message, http.StatusConflict, false, nil)
}

func UpstreamError(message string, status int) *Error {
	return newError(ErrCodeUpstream, message, status, status >= http.StatusInternalServerError, nil)
}

func CodeOf(err error) ErrorCode {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Code
	}
	return ""
}

func IsUnauthenticated(err error) bool {
	return CodeOf(err) == ErrCodeUnauthenticated
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}
