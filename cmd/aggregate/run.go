package main

import (
	"bufio"
	"context"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/kbukum/aggregator/aggregator"
	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/logger"
	"github.com/kbukum/aggregator/observability"
	"github.com/kbukum/aggregator/source"
	"github.com/kbukum/aggregator/validation"
	"github.com/kbukum/aggregator/value"
	"github.com/kbukum/aggregator/version"
)

type runOptions struct {
	pipeline      string
	pipelineFile  string
	inputs        []string
	runID         string
	probeInterval int
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a pipeline and write the result as JSON lines to stdout",
		Example: `  aggregate run --pipeline '[{"$group":{"_id":"$user","n":{"$sum":1}}}]' --input events.jsonl
  cat events.jsonl | aggregate run --pipeline-file pipeline.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, root)
		},
	}
	addPipelineFlags(cmd, &opts.pipeline, &opts.pipelineFile)
	cmd.Flags().StringSliceVarP(&opts.inputs, "input", "i", []string{source.Stdin}, "JSON-lines input files, read in order (- for stdin)")
	cmd.Flags().StringVar(&opts.runID, "run-id", "", "run ID reported in logs and traces (default: random UUID)")
	cmd.Flags().IntVar(&opts.probeInterval, "probe-interval", 0, "records between memory probes (default: engine.probe_interval)")
	return cmd
}

func (o *runOptions) validate() error {
	return validation.New().
		OptionalUUID("run_id", o.runID).
		Custom(o.probeInterval >= 0, "probe_interval", "must not be negative").
		Custom(len(o.inputs) > 0, "input", "at least one input is required").
		Err()
}

func (o *runOptions) run(cmd *cobra.Command, root *rootOptions) error {
	if err := o.validate(); err != nil {
		return err
	}
	cfg, err := root.load()
	if err != nil {
		return err
	}
	logger.Init(cfg.Logging)
	log := logger.Get("cli")

	description, err := readPipeline(o.pipeline, o.pipelineFile)
	if err != nil {
		return err
	}
	pipelineOpts, err := cfg.PipelineOptions()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	shutdown, err := observability.Setup(ctx, cfg.Telemetry, cfg.Name, version.Get().Short())
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn("telemetry shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	src, err := openInputs(cmd.InOrStdin(), o.inputs)
	if err != nil {
		return err
	}

	interval := cfg.Engine.ProbeInterval
	if o.probeInterval > 0 {
		interval = o.probeInterval
	}
	out := bufio.NewWriter(cmd.OutOrStdout())
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)

	runOpts := []aggregator.Option{
		aggregator.WithLogger(log),
		aggregator.WithProbe(aggregator.NewRuntimeProbe(cfg.Engine.MemoryReserveRatio)),
		aggregator.WithProbeInterval(interval),
		aggregator.WithPipelineOptions(pipelineOpts...),
		aggregator.WithRunID(o.runID),
		aggregator.WithSink(func(_ context.Context, rec *value.Record) error {
			return enc.Encode(rec)
		}),
	}
	if cfg.Telemetry.Enabled {
		metrics, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName))
		if err != nil {
			return err
		}
		runOpts = append(runOpts, aggregator.WithMetrics(metrics))
	}

	_, runErr := aggregator.Run(ctx, description, src, runOpts...)
	if err := out.Flush(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

// openInputs chains the named inputs into one record source. "-" reads
// stdin, which is never closed.
func openInputs(stdin io.Reader, paths []string) (source.Iterator[*value.Record], error) {
	sources := make([]source.Iterator[*value.Record], 0, len(paths))
	for _, path := range paths {
		if path == source.Stdin {
			sources = append(sources, source.NewJSONLines(io.NopCloser(stdin)))
			continue
		}
		it, err := source.Open(path)
		if err != nil {
			for _, s := range sources {
				_ = s.Close()
			}
			return nil, err
		}
		sources = append(sources, it)
	}
	return source.Concat(sources...), nil
}

// readPipeline returns the inline description or the contents of file.
// Exactly one of them must be set.
func readPipeline(inline, file string) (string, error) {
	if err := validation.New().
		Required("pipeline", inline+file).
		Custom(inline == "" || file == "", "pipeline", "--pipeline and --pipeline-file are mutually exclusive").
		Err(); err != nil {
		return "", err
	}
	if inline != "" {
		return inline, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", errors.SourceUnavailable(file, err).WithDetail("flag", "pipeline-file")
	}
	return string(data), nil
}

func addPipelineFlags(cmd *cobra.Command, inline, file *string) {
	cmd.Flags().StringVarP(inline, "pipeline", "p", "", "pipeline description as a JSON array of stages")
	cmd.Flags().StringVarP(file, "pipeline-file", "f", "", "file holding the pipeline description")
}
