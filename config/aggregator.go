package config

import (
	"fmt"
	"time"

	"github.com/kbukum/aggregator/accumulator"
	"github.com/kbukum/aggregator/expression"
	"github.com/kbukum/aggregator/observability"
	"github.com/kbukum/aggregator/validation"
)

// Engine defaults.
const (
	DefaultProbeInterval      = 1000
	DefaultMemoryReserveRatio = 0.2
	DefaultZone               = "UTC"
)

// EngineConfig tunes pipeline evaluation and the host feed loop.
type EngineConfig struct {
	// ProbeInterval is the number of records between memory probes.
	ProbeInterval int `yaml:"probe_interval" mapstructure:"probe_interval" validate:"gte=1"`
	// MemoryReserveRatio is the share of memory kept free before a run aborts.
	MemoryReserveRatio float64 `yaml:"memory_reserve_ratio" mapstructure:"memory_reserve_ratio" validate:"gte=0.1,lte=0.5"`
	// DefaultZone is used by time operators called without a zone.
	DefaultZone string `yaml:"default_zone" mapstructure:"default_zone" validate:"required"`
	// B2SCacheSize bounds each $b2s interning cache.
	B2SCacheSize int `yaml:"b2s_cache_size" mapstructure:"b2s_cache_size" validate:"gte=1"`
	// B2SCacheTTL expires $b2s cache entries after write.
	B2SCacheTTL time.Duration `yaml:"b2s_cache_ttl" mapstructure:"b2s_cache_ttl" validate:"gt=0"`
}

// ApplyDefaults fills unset engine settings.
func (c *EngineConfig) ApplyDefaults() {
	if c.ProbeInterval == 0 {
		c.ProbeInterval = DefaultProbeInterval
	}
	if c.MemoryReserveRatio == 0 {
		c.MemoryReserveRatio = DefaultMemoryReserveRatio
	}
	if c.DefaultZone == "" {
		c.DefaultZone = DefaultZone
	}
	if c.B2SCacheSize == 0 {
		c.B2SCacheSize = expression.DefaultB2SCacheSize
	}
	if c.B2SCacheTTL == 0 {
		c.B2SCacheTTL = expression.DefaultB2SCacheTTL
	}
}

// AggregatorConfig is the full configuration of the aggregate host.
type AggregatorConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Engine        EngineConfig         `yaml:"engine" mapstructure:"engine"`
	Telemetry     observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults applies defaults to every section.
func (c *AggregatorConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Engine.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate checks struct constraints and that the default zone resolves.
func (c *AggregatorConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return err
	}
	_, zoneErr := expression.LoadZone(c.Engine.DefaultZone)
	if err := validation.New().Check("engine.default_zone", zoneErr).Err(); err != nil {
		return err
	}
	return nil
}

// PipelineOptions returns the build options the engine settings imply.
func (c *AggregatorConfig) PipelineOptions() ([]accumulator.Option, error) {
	loc, err := expression.LoadZone(c.Engine.DefaultZone)
	if err != nil {
		return nil, fmt.Errorf("engine.default_zone: %w", err)
	}
	return []accumulator.Option{
		accumulator.WithDefaultZone(loc),
		accumulator.WithB2SCache(c.Engine.B2SCacheSize, c.Engine.B2SCacheTTL),
	}, nil
}
