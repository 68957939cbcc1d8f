// Command aggregate runs aggregation pipelines over JSON-lines input.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kbukum/aggregator/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps failures to process exit codes: 2 for bad pipelines or
// input, 3 when a run was aborted for memory, 1 otherwise.
func exitCode(err error) int {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return 1
	}
	switch appErr.Code {
	case errors.ErrCodeBuild, errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeMissingField:
		return 2
	case errors.ErrCodeResourceExhausted:
		return 3
	default:
		return 1
	}
}
