package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// RunContext holds observability state for one aggregation run.
type RunContext struct {
	RunID      string
	Pipeline   string
	StartTime  time.Time
	Metrics    *Metrics
	RecordsIn  int64
	RecordsOut int64
}

// NewRunContext creates a run context. If metrics is nil, metric recording
// is skipped.
func NewRunContext(runID, pipeline string, metrics *Metrics) *RunContext {
	return &RunContext{
		RunID:     runID,
		Pipeline:  pipeline,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
}

type runContextKey struct{}

// WithRunContext stores a RunContext in the context.
func WithRunContext(ctx context.Context, rc *RunContext) context.Context {
	return context.WithValue(ctx, runContextKey{}, rc)
}

// RunContextFromContext retrieves the RunContext from context, or nil.
func RunContextFromContext(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runContextKey{}).(*RunContext); ok {
		return rc
	}
	return nil
}

// Start opens the run span and records the run start.
func (rc *RunContext) Start(ctx context.Context) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, SpanRun)
	span.SetAttributes(
		attribute.String(AttrRunID, rc.RunID),
		attribute.String(AttrPipeline, rc.Pipeline),
	)
	if rc.Metrics != nil {
		rc.Metrics.RecordRunStart(ctx)
	}
	return WithRunContext(ctx, rc), span
}

// End closes the run span and records the run outcome. code is the error
// code of err and phase where it happened; both are ignored when err is nil.
func (rc *RunContext) End(ctx context.Context, span trace.Span, code, phase string, err error) {
	duration := time.Since(rc.StartTime)
	status := StatusOK
	if err != nil {
		status = StatusFailed
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorCode, code))
	}

	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrRecordsIn, rc.RecordsIn),
		attribute.Int64(AttrRecordsOut, rc.RecordsOut),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if rc.Metrics != nil {
		rc.Metrics.RecordRunEnd(ctx, status, rc.RecordsIn, rc.RecordsOut, duration)
		if err != nil {
			rc.Metrics.RecordError(ctx, code, phase)
		}
	}
}

// Duration returns the elapsed time since the run started.
func (rc *RunContext) Duration() time.Duration {
	return time.Since(rc.StartTime)
}
