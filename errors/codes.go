package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Pipeline errors
const (
	// ErrCodeBuild indicates a malformed pipeline, expression or condition description.
	ErrCodeBuild ErrorCode = "BUILD_ERROR"
	// ErrCodeEvaluation indicates a failure while pushing or draining records.
	ErrCodeEvaluation ErrorCode = "EVALUATION_ERROR"
	// ErrCodeResourceExhausted indicates the host aborted a run under memory pressure.
	ErrCodeResourceExhausted ErrorCode = "RESOURCE_EXHAUSTED"
)

// Input errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeInvalidFormat indicates a field has an invalid format.
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
)

// Source errors (retryable)
const (
	// ErrCodeSourceUnavailable indicates the record source could not be read.
	ErrCodeSourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE"
	// ErrCodeTimeout indicates the run was cancelled by its context.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// A whole request fails on build, evaluation or memory errors; retrying the same
// description against the same records cannot succeed.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeSourceUnavailable: true,
	ErrCodeTimeout:           true,
	ErrCodeBuild:             false,
	ErrCodeEvaluation:        false,
	ErrCodeResourceExhausted: false,
	ErrCodeInternal:          false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
