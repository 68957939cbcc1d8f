package expression

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"

	"github.com/kbukum/aggregator/document"
	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/value"
)

// ScriptHost compiles the source of a $jscript operator once at build time.
type ScriptHost interface {
	Compile(source string) (Script, error)
}

// Script evaluates a compiled source with the record's top-level fields
// bound as variables.
type Script interface {
	Eval(vars map[string]any) (any, error)
}

// CELHost compiles scripts as CEL expressions. Sources are parsed but not
// type-checked, so identifiers resolve against whatever fields the record
// carries at evaluation time.
type CELHost struct {
	once sync.Once
	env  *cel.Env
	err  error
}

// NewCELHost returns a host with an empty CEL environment.
func NewCELHost() *CELHost { return &CELHost{} }

func (h *CELHost) environment() (*cel.Env, error) {
	h.once.Do(func() {
		h.env, h.err = cel.NewEnv()
	})
	return h.env, h.err
}

// Compile parses source into a CEL program.
func (h *CELHost) Compile(source string) (Script, error) {
	env, err := h.environment()
	if err != nil {
		return nil, fmt.Errorf("error creating CEL environment: %w", err)
	}
	ast, issues := env.Parse(source)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("error parsing CEL expression: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("error creating program: %w", err)
	}
	return &celScript{program: prg}, nil
}

type celScript struct {
	program cel.Program
}

func (s *celScript) Eval(vars map[string]any) (any, error) {
	out, _, err := s.program.Eval(vars)
	if err != nil {
		return nil, err
	}
	return celNative(out)
}

var (
	anyList = reflect.TypeOf([]any{})
	anyMap  = reflect.TypeOf(map[string]any{})
)

func celNative(v ref.Val) (any, error) {
	switch v.(type) {
	case types.Null:
		return nil, nil
	case traits.Mapper:
		return v.ConvertToNative(anyMap)
	case traits.Lister:
		return v.ConvertToNative(anyList)
	}
	if types.IsError(v) {
		return nil, fmt.Errorf("%v", v)
	}
	return v.Value(), nil
}

func buildScript(b *builder, op string, arg document.Node) (Expression, error) {
	source, ok := arg.Str()
	if !ok || source == "" {
		return nil, errors.Buildf(op, "\"<script>\" - expected a script string, got %s", arg.String())
	}
	script, err := b.opts.host.Compile(source)
	if err != nil {
		return nil, errors.Buildf(op, "can't compile script %q", source).WithCause(err)
	}
	return Func(func(rec *value.Record) (value.Value, error) {
		vars := make(map[string]any, rec.Len())
		rec.Range(func(k string, v value.Value) bool {
			vars[k] = v.Native()
			return true
		})
		out, err := script.Eval(vars)
		if err != nil {
			return value.Null(), errors.Evaluationf(op, "script %q failed", source).WithCause(err)
		}
		return value.From(out), nil
	}), nil
}
