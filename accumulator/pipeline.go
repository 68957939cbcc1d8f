package accumulator

import (
	"fmt"
	"time"

	"github.com/kbukum/aggregator/collection"
	"github.com/kbukum/aggregator/document"
	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/expression"
	"github.com/kbukum/aggregator/value"
)

// Stage names accepted in a pipeline description.
const (
	StageMatch   = "$match"
	StageProject = "$project"
	StageGroup   = "$group"
	StageSort    = "$sort"
	StageSkip    = "$skip"
	StageLimit   = "$limit"
)

type stageBuilder func(next Stage, body document.Node, b *builder) (Stage, error)

var stages = map[string]stageBuilder{
	StageMatch:   newMatchStage,
	StageProject: newProjectStage,
	StageGroup:   newGroupStage,
	StageSort:    newSortStage,
	StageSkip:    newSkipStage,
	StageLimit:   newLimitStage,
}

type builder struct {
	exprOpts []expression.Option
}

// Option configures Build.
type Option func(*builder)

// WithScriptHost sets the host that compiles $jscript operators. By default
// every pipeline gets its own CEL host.
func WithScriptHost(host expression.ScriptHost) Option {
	return func(b *builder) { b.exprOpts = append(b.exprOpts, expression.WithScriptHost(host)) }
}

// WithDefaultZone sets the zone used by time operators without an explicit
// zone.
func WithDefaultZone(loc *time.Location) Option {
	return func(b *builder) { b.exprOpts = append(b.exprOpts, expression.WithDefaultZone(loc)) }
}

// WithB2SCache sizes the interning cache of each $b2s operator.
func WithB2SCache(size int, ttl time.Duration) Option {
	return func(b *builder) { b.exprOpts = append(b.exprOpts, expression.WithB2SCache(size, ttl)) }
}

// Pipeline is a built stage chain. Put failures are reported with the
// description text attached.
type Pipeline struct {
	description string
	names       []string
	head        Stage
}

// Build parses a pipeline description and links its stages.
func Build(description string, opts ...Option) (*Pipeline, error) {
	node, err := document.Parse(description)
	if err != nil {
		return nil, errors.Build("pipeline", "malformed description").
			WithDetail("pipeline", description).
			WithCause(err)
	}
	return BuildNode(node, description, opts...)
}

// BuildNode links the stages of an already parsed description. The
// description text is kept for error reports.
func BuildNode(node document.Node, description string, opts ...Option) (*Pipeline, error) {
	b := &builder{exprOpts: []expression.Option{expression.WithScriptHost(expression.NewCELHost())}}
	for _, opt := range opts {
		opt(b)
	}
	if node.Kind() != document.Array {
		return nil, errors.Build("pipeline", "description must be an array of stages").
			WithDetail("pipeline", description)
	}
	items := node.Items()
	if len(items) == 0 {
		return nil, errors.Build("pipeline", "description must contain at least one stage").
			WithDetail("pipeline", description)
	}

	names := make([]string, len(items))
	var head Stage
	for i := len(items) - 1; i >= 0; i-- {
		name, body, ok := items[i].Single()
		if !ok {
			return nil, errors.Buildf("pipeline", "accumulator must contain exactly one field - %s", items[i].String()).
				WithDetail("pipeline", description)
		}
		build, found := stages[name]
		if !found {
			return nil, errors.Buildf("pipeline", "unknown accumulator[%s]", name).
				WithDetail("pipeline", description)
		}
		stage, err := build(head, body, b)
		if err != nil {
			return nil, err
		}
		head = stage
		names[i] = name
	}
	return &Pipeline{description: description, names: names, head: head}, nil
}

// Description returns the text the pipeline was built from.
func (p *Pipeline) Description() string { return p.description }

// Stages returns the stage names in description order.
func (p *Pipeline) Stages() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Put pushes one record into the first stage.
func (p *Pipeline) Put(rec *value.Record) error {
	if err := p.head.Put(rec); err != nil {
		return errors.New(errors.ErrCodeEvaluation, fmt.Sprintf("pipeline %s failed: %s", p.description, err.Error())).
			WithDetail("pipeline", p.description).
			WithCause(err)
	}
	return nil
}

// Get drains the pipeline and returns the terminal collection. It is meant
// to be called once, after the last Put.
func (p *Pipeline) Get() (collection.Collection, error) {
	return p.head.Get()
}
