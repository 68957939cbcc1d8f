package aggregator

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/aggregator/accumulator"
	"github.com/kbukum/aggregator/collection"
	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/logger"
	"github.com/kbukum/aggregator/observability"
	"github.com/kbukum/aggregator/source"
	"github.com/kbukum/aggregator/value"
)

// DefaultProbeInterval is the number of records between memory probes.
const DefaultProbeInterval = 1000

// Run phases, reported with failures.
const (
	PhaseBuild = "build"
	PhaseFeed  = "feed"
	PhaseDrain = "drain"
)

// Sink receives drained result records in collection order.
type Sink func(ctx context.Context, rec *value.Record) error

type options struct {
	probe         MemoryProbe
	probeInterval int
	log           *logger.Logger
	metrics       *observability.Metrics
	runID         string
	sink          Sink
	pipelineOpts  []accumulator.Option
}

// Option configures a run.
type Option func(*options)

// WithProbe sets the memory probe. The default never reports pressure.
func WithProbe(p MemoryProbe) Option {
	return func(o *options) { o.probe = p }
}

// WithProbeInterval sets how many records pass between probes. Values
// below 1 keep the default.
func WithProbeInterval(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.probeInterval = n
		}
	}
}

// WithLogger sets the run logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records run metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithRunID sets the run ID. By default a random UUID is used.
func WithRunID(id string) Option {
	return func(o *options) { o.runID = id }
}

// WithSink streams drained records to sink instead of collecting them in
// Result.Records.
func WithSink(sink Sink) Option {
	return func(o *options) { o.sink = sink }
}

// WithPipelineOptions passes build options to the pipeline.
func WithPipelineOptions(opts ...accumulator.Option) Option {
	return func(o *options) { o.pipelineOpts = append(o.pipelineOpts, opts...) }
}

// Result describes a finished run.
type Result struct {
	RunID  string
	Stages []string
	// Collection is the terminal collection returned by the pipeline.
	Collection collection.Collection
	// Records holds the drained records when no sink was configured.
	Records    []*value.Record
	// RecordsIn counts records read from the source.
	RecordsIn  int64
	RecordsOut int64
	Duration   time.Duration
}

// Run builds the pipeline described by description, pushes every record of
// src into it and drains the result. src is closed before Run returns.
func Run(ctx context.Context, description string, src source.Iterator[*value.Record], opts ...Option) (*Result, error) {
	defer src.Close()

	o := &options{probe: NeverExceeded, probeInterval: DefaultProbeInterval}
	for _, opt := range opts {
		opt(o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}
	if o.log == nil {
		o.log = logger.Get("aggregator")
	}

	ctx = logger.ContextWithRunID(ctx, o.runID)
	log := o.log.WithContext(ctx)
	rc := observability.NewRunContext(o.runID, description, o.metrics)
	ctx, span := rc.Start(ctx)

	r := &runner{opts: o, log: log, rc: rc}
	res, phase, err := r.run(ctx, description, src)
	if err != nil {
		appErr, ok := errors.AsAppError(err)
		if !ok {
			appErr = errors.Internal(err)
			err = appErr
		}
		rc.End(ctx, span, string(appErr.Code), phase, err)
		log.Error("aggregate failed", logger.MergeWithDuration(logger.ErrorFields(phase, err), rc.Duration()))
		return nil, err
	}
	rc.End(ctx, span, "", "", nil)
	res.Duration = rc.Duration()
	log.Info("aggregate finished", logger.MergeWithDuration(logger.Fields(
		logger.FieldRecordsIn, res.RecordsIn,
		logger.FieldRecordsOut, res.RecordsOut,
	), res.Duration))
	return res, nil
}

type runner struct {
	opts    *options
	log     *logger.Logger
	rc      *observability.RunContext
	counter int64
}

// check advances the shared record counter and probes memory on every
// probeInterval-th record.
func (r *runner) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Timeout("aggregate", err)
	}
	r.counter++
	if r.counter%int64(r.opts.probeInterval) != 0 || !r.opts.probe.Exceeded() {
		return nil
	}
	detail := "memory reserve reached"
	if s, ok := r.opts.probe.(sampler); ok {
		detail = s.LastSample().String()
	}
	return errors.ResourceExhausted(detail).
		WithDetail("records", r.counter)
}

func (r *runner) run(ctx context.Context, description string, src source.Iterator[*value.Record]) (*Result, string, error) {
	p, err := accumulator.Build(description, r.opts.pipelineOpts...)
	if err != nil {
		return nil, PhaseBuild, err
	}
	res := &Result{RunID: r.opts.runID, Stages: p.Stages()}
	observability.SetSpanAttribute(ctx, observability.AttrStages, res.Stages)
	r.log.Info("aggregate started", logger.Fields(logger.FieldStages, res.Stages))

	if err := r.feed(ctx, p, src); err != nil {
		return nil, PhaseFeed, err
	}
	res.RecordsIn = r.rc.RecordsIn

	if err := r.drain(ctx, p, res); err != nil {
		return nil, PhaseDrain, err
	}
	res.RecordsOut = r.rc.RecordsOut
	return res, "", nil
}

func (r *runner) feed(ctx context.Context, p *accumulator.Pipeline, src source.Iterator[*value.Record]) (err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanFeed)
	defer endSpan(span, &err)
	in := source.Tap(src, func(context.Context, *value.Record) error {
		r.rc.RecordsIn++
		return nil
	})
	for {
		if err := r.check(ctx); err != nil {
			return err
		}
		rec, ok, err := in.Next(ctx)
		if err != nil {
			return sourceError(err)
		}
		if !ok {
			return nil
		}
		if err := p.Put(rec); err != nil {
			if appErr, ok := errors.AsAppError(err); ok {
				return appErr.WithDetail("input", rec.String())
			}
			return err
		}
	}
}

func (r *runner) drain(ctx context.Context, p *accumulator.Pipeline, res *Result) (err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanDrain)
	defer endSpan(span, &err)
	c, err := p.Get()
	if err != nil {
		return err
	}
	res.Collection = c
	if r.opts.sink == nil {
		res.Records = make([]*value.Record, 0, c.Size())
	}
	it := c.Iterator()
	for {
		if err := r.check(ctx); err != nil {
			return err
		}
		rec, ok := it.Next()
		if !ok {
			return nil
		}
		if r.opts.sink != nil {
			if err := r.opts.sink(ctx, rec); err != nil {
				return err
			}
		} else {
			res.Records = append(res.Records, rec)
		}
		r.rc.RecordsOut++
	}
}

func sourceError(err error) error {
	if errors.IsAppError(err) {
		return err
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Timeout("aggregate", err)
	}
	return errors.SourceUnavailable("input", err)
}

func endSpan(span trace.Span, err *error) {
	if *err != nil {
		span.RecordError(*err)
	}
	span.End()
}
