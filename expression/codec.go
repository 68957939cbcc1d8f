package expression

import (
	"strconv"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kbukum/aggregator/document"
	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/value"
)

// buildB2L decodes up to eight big-endian bytes into an integer. Null and
// oversized input decode to 0.
func buildB2L(b *builder, op string, arg document.Node) (Expression, error) {
	e, err := b.unary(op, arg)
	if err != nil {
		return nil, err
	}
	return Func(func(rec *value.Record) (value.Value, error) {
		v, err := e.Evaluate(rec)
		if err != nil {
			return value.Null(), err
		}
		if v.IsNull() {
			return value.Int(0), nil
		}
		raw, ok := v.AsBytes()
		if !ok {
			return value.Null(), errors.Evaluationf(op, "expected bytes, got %s", v.Kind())
		}
		if len(raw) > 8 {
			return value.Int(0), nil
		}
		var n uint64
		for _, c := range raw {
			n = n<<8 | uint64(c)
		}
		return value.Int(int64(n)), nil
	}), nil
}

// buildB2S decodes bytes as UTF-8 text. Decoded strings are interned in a
// bounded cache owned by the operator so repeated cell values share one
// allocation. Null decodes to the text "null".
func buildB2S(b *builder, op string, arg document.Node) (Expression, error) {
	e, err := b.unary(op, arg)
	if err != nil {
		return nil, err
	}
	cache := expirable.NewLRU[string, string](b.opts.b2sCacheSize, nil, b.opts.b2sCacheTTL)
	return Func(func(rec *value.Record) (value.Value, error) {
		v, err := e.Evaluate(rec)
		if err != nil {
			return value.Null(), err
		}
		if v.IsNull() {
			return value.String("null"), nil
		}
		raw, ok := v.AsBytes()
		if !ok {
			return value.Null(), errors.Evaluationf(op, "expected bytes, got %s", v.Kind())
		}
		s := string(raw)
		if interned, ok := cache.Get(s); ok {
			return value.String(interned), nil
		}
		cache.Add(s, s)
		return value.String(s), nil
	}), nil
}

func buildStoL(b *builder, op string, arg document.Node) (Expression, error) {
	e, err := b.unary(op, arg)
	if err != nil {
		return nil, err
	}
	return Func(func(rec *value.Record) (value.Value, error) {
		v, err := e.Evaluate(rec)
		if err != nil {
			return value.Null(), err
		}
		n, perr := strconv.ParseInt(v.String(), 10, 64)
		if perr != nil {
			return value.Null(), errors.Evaluationf(op, "can't parse %q as an integer", v.String()).WithCause(perr)
		}
		return value.Int(n), nil
	}), nil
}

func buildStoD(b *builder, op string, arg document.Node) (Expression, error) {
	e, err := b.unary(op, arg)
	if err != nil {
		return nil, err
	}
	return Func(func(rec *value.Record) (value.Value, error) {
		v, err := e.Evaluate(rec)
		if err != nil {
			return value.Null(), err
		}
		f, perr := strconv.ParseFloat(v.String(), 64)
		if perr != nil {
			return value.Null(), errors.Evaluationf(op, "can't parse %q as a number", v.String()).WithCause(perr)
		}
		return value.Number(f), nil
	}), nil
}
