package expression

import (
	"math"

	"github.com/kbukum/aggregator/document"
	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/value"
)

// Arithmetic is done in float64. add, multiply and subtract let non-numeric
// operands contribute nothing; divide and mod reject them.

func buildAdd(b *builder, op string, arg document.Node) (Expression, error) {
	exprs, err := b.operands(op, arg)
	if err != nil {
		return nil, err
	}
	return Func(func(rec *value.Record) (value.Value, error) {
		sum := 0.0
		for _, e := range exprs {
			v, err := e.Evaluate(rec)
			if err != nil {
				return value.Null(), err
			}
			if n, ok := value.ToNumber(v); ok {
				sum += n
			}
		}
		return value.Number(sum), nil
	}), nil
}

func buildMultiply(b *builder, op string, arg document.Node) (Expression, error) {
	exprs, err := b.operands(op, arg)
	if err != nil {
		return nil, err
	}
	return Func(func(rec *value.Record) (value.Value, error) {
		product := 1.0
		for _, e := range exprs {
			v, err := e.Evaluate(rec)
			if err != nil {
				return value.Null(), err
			}
			if n, ok := value.ToNumber(v); ok {
				product *= n
			}
		}
		return value.Number(product), nil
	}), nil
}

func buildSubtract(b *builder, op string, arg document.Node) (Expression, error) {
	exprs, err := b.exactly(op, arg, 2, "[<expression1>, <expression2>]")
	if err != nil {
		return nil, err
	}
	return Func(func(rec *value.Record) (value.Value, error) {
		vals, err := evalAll(exprs, rec)
		if err != nil {
			return value.Null(), err
		}
		result := 0.0
		if n, ok := value.ToNumber(vals[0]); ok {
			result += n
		}
		if n, ok := value.ToNumber(vals[1]); ok {
			result -= n
		}
		return value.Number(result), nil
	}), nil
}

func buildDivide(b *builder, op string, arg document.Node) (Expression, error) {
	return buildStrictBinary(b, op, arg, "non numerical object can't perform the division operation",
		func(x, y float64) float64 { return x / y })
}

func buildMod(b *builder, op string, arg document.Node) (Expression, error) {
	return buildStrictBinary(b, op, arg, "non numerical objects can't perform modulo operation", math.Mod)
}

func buildStrictBinary(b *builder, op string, arg document.Node, reason string, fn func(x, y float64) float64) (Expression, error) {
	exprs, err := b.exactly(op, arg, 2, "[<expression1>, <expression2>]")
	if err != nil {
		return nil, err
	}
	return Func(func(rec *value.Record) (value.Value, error) {
		vals, err := evalAll(exprs, rec)
		if err != nil {
			return value.Null(), err
		}
		x, okx := value.ToNumber(vals[0])
		y, oky := value.ToNumber(vals[1])
		if !okx || !oky {
			return value.Null(), errors.Evaluation(op, reason).
				WithDetail("operands", []string{vals[0].String(), vals[1].String()})
		}
		return value.Number(fn(x, y)), nil
	}), nil
}
