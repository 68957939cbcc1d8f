// Package errors provides the structured error type shared by the
// aggregation engine and its host.
//
// Two classes matter to callers: BUILD_ERROR for descriptions that cannot be
// turned into a pipeline, and EVALUATION_ERROR for failures raised while
// records flow through one. Neither is retryable.
package errors
