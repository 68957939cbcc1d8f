// Package validation checks configuration and command-line input.
//
// Struct tag validation (go-playground/validator) covers loaded
// configuration; the fluent Validator collects errors for ad-hoc input
// such as CLI flags.
//
// # Struct Tag Validation
//
//	type EngineConfig struct {
//	    ProbeInterval int `mapstructure:"probe_interval" validate:"gte=1"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	err := validation.New().
//	    Required("pipeline", desc).
//	    OptionalUUID("run_id", runID).
//	    Validate()
package validation
