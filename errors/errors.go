package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode identifies the failure class carried by an AppError.
type ErrorCode string

const (
	ErrorCode_INTERNAL             ErrorCode = "INTERNAL"
	ErrorCode_INVALID_ARGUMENT     ErrorCode = "INVALID_ARGUMENT"
	ErrorCode_NOT_FOUND            ErrorCode = "NOT_FOUND"
	ErrorCode_SOURCE_CONNECTIVITY  ErrorCode = "SOURCE_CONNECTIVITY"
	ErrorCode_SOURCE_SERVER        ErrorCode = "SOURCE_SERVER"
	ErrorCode_NORMALIZATION        ErrorCode = "NORMALIZATION"
	ErrorCode_VALIDATION           ErrorCode = "VALIDATION"
	ErrorCode_STATE_TRANSITION     ErrorCode = "STATE_TRANSITION"
	ErrorCode_DUPLICATE_EXECUTION  ErrorCode = "DUPLICATE_EXECUTION"
	ErrorCode_EXTERNAL_UNAVAILABLE ErrorCode = "EXTERNAL_UNAVAILABLE"
	ErrorCode_UNAUTHENTICATED      ErrorCode = "UNAUTHENTICATED"
)

func (c ErrorCode) String() string { return string(c) }

// AppError is the HTTP-aware error type returned across the API boundary.
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/As.
func (e AppError) Unwrap() error { return e.Raw }

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_UNAUTHENTICATED,
		Message:  "Authentication required",
	}
}

// Source Errors

// ErrSourceConnectivity marks a meeting source as unreachable. The
// reconciliation engine degrades the source instead of failing the load.
func ErrSourceConnectivity(source string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_SOURCE_CONNECTIVITY,
		Message:  fmt.Sprintf("Meeting source unreachable: %s", source),
	}.WithDetail("source", source)
}

func ErrSourceNotFound(source, id string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  "Record not found at source",
	}.WithDetail("source", source).WithDetail("id", id)
}

func ErrSourceServer(source string, status int, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_SOURCE_SERVER,
		Message:  fmt.Sprintf("Meeting source returned %d: %s", status, source),
	}.WithDetail("source", source).WithDetail("status", fmt.Sprintf("%d", status))
}

// ErrNormalization is record-scoped: it drops one record, never a batch.
func ErrNormalization(source, field string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusUnprocessableEntity,
		Code:     ErrorCode_NORMALIZATION,
		Message:  "Malformed source record",
	}.WithDetail("source", source).WithDetail("field", field)
}

// Workflow Errors

func ErrValidation(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_VALIDATION,
		Message:  message,
	}
}

func ErrStateTransition(id, current, attempted string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_STATE_TRANSITION,
		Message:  "Illegal workflow transition",
	}.WithDetail("id", id).
		WithDetail("current_status", current).
		WithDetail("attempted", attempted)
}

func ErrDuplicateExecution(executionID string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_DUPLICATE_EXECUTION,
		Message:  "External execution already imported",
	}.WithDetail("execution_id", executionID)
}

// ErrExternalUnavailable is the soft condition: the automation system is not
// configured or not reachable. Distinct from a real failure so UIs can say
// "not configured" rather than "broken".
func ErrExternalUnavailable(system string) AppError {
	return AppError{
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_EXTERNAL_UNAVAILABLE,
		Message:  fmt.Sprintf("External system not available: %s", system),
	}.WithDetail("system", system)
}
