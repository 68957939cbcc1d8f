// Package logger provides structured logging for the aggregation engine
// and its CLI using zerolog.
//
// Logs go to stderr by default so that results written to stdout stay
// machine readable. Loggers can be scoped to a component and enriched with
// the run ID carried in a context.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("aggregator").WithContext(ctx)
//	log.Info("run finished", logger.Fields(logger.FieldRecordsIn, 1200))
package logger
