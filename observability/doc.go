// Package observability provides OpenTelemetry tracing and metrics for
// aggregation runs.
//
// Export is disabled by default; with it disabled the global no-op
// providers stay in place and instruments cost nothing.
//
//	shutdown, err := observability.Setup(ctx, cfg.Telemetry, "aggregate", version.Get().Version)
//	defer shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName))
//	rc := observability.NewRunContext(runID, description, metrics)
//	ctx, span := rc.Start(ctx)
//	defer rc.End(ctx, span, "", "", nil)
package observability
