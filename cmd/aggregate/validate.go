package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/aggregator/accumulator"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	var inline, file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Build a pipeline without running it and print its stages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			description, err := readPipeline(inline, file)
			if err != nil {
				return err
			}
			opts, err := cfg.PipelineOptions()
			if err != nil {
				return err
			}
			p, err := accumulator.Build(description, opts...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: %s\n", strings.Join(p.Stages(), " -> "))
			return err
		},
	}
	addPipelineFlags(cmd, &inline, &file)
	return cmd
}
