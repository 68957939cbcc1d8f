package expression

import (
	"strings"
	"time"

	"github.com/kbukum/aggregator/document"
	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/value"
)

// Expression produces a value from a record.
type Expression interface {
	Evaluate(rec *value.Record) (value.Value, error)
}

// Func adapts a plain function to Expression.
type Func func(rec *value.Record) (value.Value, error)

// Evaluate calls f(rec).
func (f Func) Evaluate(rec *value.Record) (value.Value, error) { return f(rec) }

// Default settings used when no Option overrides them.
const (
	DefaultB2SCacheSize = 512
	DefaultB2SCacheTTL  = 30 * time.Second
)

type options struct {
	host         ScriptHost
	zone         *time.Location
	b2sCacheSize int
	b2sCacheTTL  time.Duration
}

// Option configures Build.
type Option func(*options)

// WithScriptHost sets the host that compiles $jscript sources.
func WithScriptHost(host ScriptHost) Option {
	return func(o *options) { o.host = host }
}

// WithDefaultZone sets the zone used by time operators that are not given
// one explicitly.
func WithDefaultZone(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.zone = loc
		}
	}
}

// WithB2SCache sizes the interning cache owned by each $b2s operator.
func WithB2SCache(size int, ttl time.Duration) Option {
	return func(o *options) {
		if size > 0 {
			o.b2sCacheSize = size
		}
		if ttl > 0 {
			o.b2sCacheTTL = ttl
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		zone:         time.UTC,
		b2sCacheSize: DefaultB2SCacheSize,
		b2sCacheTTL:  DefaultB2SCacheTTL,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.host == nil {
		o.host = NewCELHost()
	}
	return o
}

// builder carries build options through the recursive descent.
type builder struct {
	opts *options
}

type constructor func(b *builder, op string, arg document.Node) (Expression, error)

var operators map[string]constructor

func init() {
	operators = map[string]constructor{
		"and": buildAnd,
		"or":  buildOr,
		"not": buildNot,

		"cmp": buildComparison(func(c int) value.Value { return value.Int(int64(c)) }),
		"eq":  buildComparison(func(c int) value.Value { return value.Bool(c == 0) }),
		"ne":  buildComparison(func(c int) value.Value { return value.Bool(c != 0) }),
		"gt":  buildComparison(func(c int) value.Value { return value.Bool(c > 0) }),
		"gte": buildComparison(func(c int) value.Value { return value.Bool(c >= 0) }),
		"lt":  buildComparison(func(c int) value.Value { return value.Bool(c < 0) }),
		"lte": buildComparison(func(c int) value.Value { return value.Bool(c <= 0) }),

		"add":      buildAdd,
		"multiply": buildMultiply,
		"subtract": buildSubtract,
		"divide":   buildDivide,
		"mod":      buildMod,

		"concat":    buildConcat,
		"substring": buildSubstring,
		"tolower":   buildCase(strings.ToLower),
		"toupper":   buildCase(strings.ToUpper),

		"b2l":  buildB2L,
		"b2s":  buildB2S,
		"stol": buildStoL,
		"stod": buildStoD,

		"jscript": buildScript,
		"select":  buildSelect,

		"mix":   buildMix,
		"union": buildUnion,
		"size":  buildSize,

		"formattime": buildFormatTime,
		"day":        buildDay,
		"between":    buildBetween,
	}
}

// Operators returns the names of all registered operators without the
// leading '$'.
func Operators() []string {
	names := make([]string, 0, len(operators))
	for name := range operators {
		names = append(names, name)
	}
	return names
}

// Build compiles a description node into an Expression.
func Build(node document.Node, opts ...Option) (Expression, error) {
	b := &builder{opts: newOptions(opts)}
	return b.build(node)
}

// Parse is Build over JSON text.
func Parse(text string, opts ...Option) (Expression, error) {
	node, err := document.Parse(text)
	if err != nil {
		return nil, errors.Build("expression", "malformed description").WithCause(err)
	}
	return Build(node, opts...)
}

func (b *builder) build(node document.Node) (Expression, error) {
	switch node.Kind() {
	case document.Null, document.Bool, document.Number:
		return constant(node.Value()), nil
	case document.String:
		s, _ := node.Str()
		if s == "nil" {
			return constant(value.Null()), nil
		}
		if strings.HasPrefix(s, "$") {
			return newPath(s[1:]), nil
		}
		return constant(value.String(s)), nil
	case document.Array:
		return b.buildList(node.Items())
	case document.Object:
		if node.Len() == 0 {
			return nil, errors.Build("expression", "empty operator")
		}
		if key, arg, ok := node.Single(); ok && strings.HasPrefix(key, "$") {
			ctor, found := operators[key[1:]]
			if !found {
				return nil, errors.Buildf("expression", "unknown operator[%s]", key)
			}
			return ctor(b, key, arg)
		}
		return b.buildMapping(node)
	}
	return nil, errors.Buildf("expression", "unknown expression[%s]", node.String())
}

func (b *builder) buildAll(nodes []document.Node) ([]Expression, error) {
	exprs := make([]Expression, 0, len(nodes))
	for _, n := range nodes {
		e, err := b.build(n)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

// operands builds the argument list of an n-ary operator. A non-array
// argument is a single operand; an empty array is rejected.
func (b *builder) operands(op string, arg document.Node) ([]Expression, error) {
	if arg.Kind() != document.Array {
		e, err := b.build(arg)
		if err != nil {
			return nil, err
		}
		return []Expression{e}, nil
	}
	exprs, err := b.buildAll(arg.Items())
	if err != nil {
		return nil, err
	}
	if len(exprs) == 0 {
		return nil, errors.Buildf(op, "[<expression1>, <expression2>, ...] - need to provide one or more parameters")
	}
	return exprs, nil
}

// exactly builds an operator argument that must be an array of n
// expressions.
func (b *builder) exactly(op string, arg document.Node, n int, usage string) ([]Expression, error) {
	if arg.Kind() != document.Array || arg.Len() != n {
		return nil, errors.Buildf(op, "%s - invalid parameters", usage)
	}
	return b.buildAll(arg.Items())
}

// span builds an array argument of min..max expressions.
func (b *builder) span(op string, arg document.Node, lo, hi int, usage string) ([]Expression, error) {
	if arg.Kind() != document.Array || arg.Len() < lo || arg.Len() > hi {
		return nil, errors.Buildf(op, "%s - invalid parameters", usage)
	}
	return b.buildAll(arg.Items())
}

// unary builds the single operand of a one-argument operator. A one-element
// array is unwrapped.
func (b *builder) unary(op string, arg document.Node) (Expression, error) {
	if arg.Kind() == document.Array {
		if arg.Len() != 1 {
			return nil, errors.Buildf(op, "<expression> - expected exactly one parameter, got %d", arg.Len())
		}
		arg = arg.Items()[0]
	}
	return b.build(arg)
}

func constant(v value.Value) Expression {
	return Func(func(*value.Record) (value.Value, error) { return v, nil })
}

type path []string

func newPath(dotted string) path { return strings.Split(dotted, ".") }

func (p path) Evaluate(rec *value.Record) (value.Value, error) {
	cur := rec
	var v value.Value
	for i, key := range p {
		if cur == nil {
			return value.Null(), nil
		}
		v = cur.Get(key)
		if i == len(p)-1 {
			break
		}
		next, ok := v.AsRecord()
		if !ok {
			return value.Null(), nil
		}
		cur = next
	}
	return v, nil
}

type mapping struct {
	keys  []string
	exprs []Expression
}

func (b *builder) buildMapping(node document.Node) (Expression, error) {
	m := &mapping{}
	err := node.Each(func(key string, sub document.Node) error {
		if key == "" || strings.HasPrefix(key, "$") {
			return errors.Buildf("mapping", "invalid key[%s]", key)
		}
		e, err := b.build(sub)
		if err != nil {
			return err
		}
		m.keys = append(m.keys, key)
		m.exprs = append(m.exprs, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *mapping) Evaluate(rec *value.Record) (value.Value, error) {
	out := value.NewRecord(len(m.keys))
	for i, key := range m.keys {
		v, err := m.exprs[i].Evaluate(rec)
		if err != nil {
			return value.Null(), err
		}
		out.Set(key, v)
	}
	return value.RecordOf(out), nil
}

func (b *builder) buildList(nodes []document.Node) (Expression, error) {
	exprs, err := b.buildAll(nodes)
	if err != nil {
		return nil, err
	}
	return Func(func(rec *value.Record) (value.Value, error) {
		items, err := evalAll(exprs, rec)
		if err != nil {
			return value.Null(), err
		}
		return value.List(items...), nil
	}), nil
}

func evalAll(exprs []Expression, rec *value.Record) ([]value.Value, error) {
	out := make([]value.Value, len(exprs))
	for i, e := range exprs {
		v, err := e.Evaluate(rec)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
