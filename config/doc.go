// Package config loads aggregation host configuration.
//
// Viper reads an optional YAML file, then environment variables (and an
// optional .env file loaded with godotenv) override it. Variables use the
// AGGREGATE_ prefix with underscore-separated paths, e.g.
// AGGREGATE_ENGINE_PROBE_INTERVAL=500.
//
// # Usage
//
//	cfg, err := config.Load("aggregate", config.WithConfigFile("aggregate.yml"))
package config
