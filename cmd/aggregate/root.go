package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/aggregator/config"
)

const serviceName = "aggregate"

type rootOptions struct {
	configFile string
	envFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Run aggregation pipelines over JSON-lines records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: ./aggregate.yml or ./config/config.yml)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", ".env file to load before reading AGGREGATE_ variables")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level (debug, info, warn, error, disabled)")

	cmd.AddCommand(newRunCmd(opts), newValidateCmd(opts), newVersionCmd())
	return cmd
}

// load reads the configuration and applies flag overrides.
func (o *rootOptions) load() (*config.AggregatorConfig, error) {
	var loaderOpts []config.LoaderOption
	if o.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(o.configFile))
	}
	if o.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(o.envFile))
	}
	cfg, err := config.Load(serviceName, loaderOpts...)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
		if err := cfg.Logging.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
