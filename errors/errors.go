// Package errors provides the structured error type shared by the
// aggregation engine and its host. Every failure carries a machine-readable
// code so a host can tell a bad pipeline description from a bad record.
package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// --- Pipeline error constructors ---

// Build reports a malformed description fragment. The fragment is the
// operator, stage or section name the caller could not build.
func Build(fragment, reason string) *AppError {
	return &AppError{
		Code: ErrCodeBuild, Message: fmt.Sprintf("%s - %s", fragment, reason),
		Retryable: false,
		Details:   map[string]any{"fragment": fragment},
	}
}

// Buildf is Build with a formatted reason.
func Buildf(fragment, format string, args ...any) *AppError {
	return Build(fragment, fmt.Sprintf(format, args...))
}

// Evaluation reports a failure raised while evaluating an operator against a record.
func Evaluation(operator, reason string) *AppError {
	return &AppError{
		Code: ErrCodeEvaluation, Message: fmt.Sprintf("%s - %s", operator, reason),
		Retryable: false,
		Details:   map[string]any{"operator": operator},
	}
}

// Evaluationf is Evaluation with a formatted reason.
func Evaluationf(operator, format string, args ...any) *AppError {
	return Evaluation(operator, fmt.Sprintf(format, args...))
}

// ResourceExhausted reports that the host aborted a run because memory
// pressure crossed its threshold.
func ResourceExhausted(detail string) *AppError {
	return &AppError{
		Code: ErrCodeResourceExhausted, Message: fmt.Sprintf("not enough memory: %s", detail),
		Retryable: false,
	}
}

// --- Generic constructors ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		Retryable: false,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		Retryable: false,
		Details:   map[string]any{"field": field},
	}
}

// InvalidFormat creates a new AppError for an invalid field format.
func InvalidFormat(field, expectedFormat string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidFormat, Message: fmt.Sprintf("Invalid format for %s. Expected: %s", field, expectedFormat),
		Retryable: false,
		Details:   map[string]any{"field": field, "expected_format": expectedFormat},
	}
}

// SourceUnavailable wraps a failure reading from a record source.
func SourceUnavailable(source string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSourceUnavailable, Message: fmt.Sprintf("record source %s could not be read", source),
		Retryable: true,
		Details:   map[string]any{"source": source}, Cause: cause,
	}
}

// Timeout creates a new AppError for a run cancelled by its context.
func Timeout(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("%s was cancelled", operation),
		Retryable: true,
		Details:   map[string]any{"operation": operation}, Cause: cause,
	}
}

// Internal creates a new AppError for an internal failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Retryable: false, Cause: cause,
	}
}

// --- Inspection helpers ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err, or any AppError it wraps, carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}
