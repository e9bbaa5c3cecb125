package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a class of request failure.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"    // 400
	ErrUnauthorized     ErrorCode = "UNAUTHORIZED"       // 401
	ErrNotFound         ErrorCode = "NOT_FOUND"          // 404
	ErrMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED" // 405
	ErrInternal         ErrorCode = "INTERNAL"           // 500
)

// PortfolioError is an error that knows its HTTP status.
type PortfolioError struct {
	Code    ErrorCode
	Status  int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *PortfolioError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PortfolioError) Unwrap() error {
	return e.Cause
}

// NewInvalidRequest creates a 400 error.
func NewInvalidRequest(msg string) *PortfolioError {
	return &PortfolioError{Code: ErrInvalidRequest, Status: http.StatusBadRequest, Message: msg}
}

// NewUnauthorized creates a 401 error.
func NewUnauthorized(msg string) *PortfolioError {
	return &PortfolioError{Code: ErrUnauthorized, Status: http.StatusUnauthorized, Message: msg}
}

// NewNotFound creates a 404 error for a missing resource.
func NewNotFound(kind, identifier string) *PortfolioError {
	return &PortfolioError{
		Code:    ErrNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
	}
}

// NewMethodNotAllowed creates a 405 error.
func NewMethodNotAllowed() *PortfolioError {
	return &PortfolioError{Code: ErrMethodNotAllowed, Status: http.StatusMethodNotAllowed, Message: "Method not allowed"}
}

// NewInternal creates a 500 error. The cause is kept for logs; Message
// stays generic so it is safe to show.
func NewInternal(err error) *PortfolioError {
	return &PortfolioError{Code: ErrInternal, Status: http.StatusInternalServerError, Message: "Internal server error", Cause: err}
}

// Is checks if err is a PortfolioError with the given code.
func Is(err error, code ErrorCode) bool {
	var pErr *PortfolioError
	if stderrors.As(err, &pErr) {
		return pErr.Code == code
	}
	return false
}

// StatusOf returns the HTTP status for err, 500 for unknown errors.
func StatusOf(err error) int {
	var pErr *PortfolioError
	if stderrors.As(err, &pErr) {
		return pErr.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var pErr *PortfolioError
	if stderrors.As(err, &pErr) {
		return pErr.Message
	}
	return "Internal server error"
}
