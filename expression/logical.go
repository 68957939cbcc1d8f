package expression

import (
	"github.com/kbukum/aggregator/document"
	"github.com/kbukum/aggregator/value"
)

func buildAnd(b *builder, op string, arg document.Node) (Expression, error) {
	exprs, err := b.operands(op, arg)
	if err != nil {
		return nil, err
	}
	return Func(func(rec *value.Record) (value.Value, error) {
		for _, e := range exprs {
			v, err := e.Evaluate(rec)
			if err != nil {
				return value.Null(), err
			}
			if !value.Truthy(v) {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	}), nil
}

func buildOr(b *builder, op string, arg document.Node) (Expression, error) {
	exprs, err := b.operands(op, arg)
	if err != nil {
		return nil, err
	}
	return Func(func(rec *value.Record) (value.Value, error) {
		for _, e := range exprs {
			v, err := e.Evaluate(rec)
			if err != nil {
				return value.Null(), err
			}
			if value.Truthy(v) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	}), nil
}

func buildNot(b *builder, op string, arg document.Node) (Expression, error) {
	e, err := b.unary(op, arg)
	if err != nil {
		return nil, err
	}
	return Func(func(rec *value.Record) (value.Value, error) {
		v, err := e.Evaluate(rec)
		if err != nil {
			return value.Null(), err
		}
		return value.Bool(!value.Truthy(v)), nil
	}), nil
}

// buildComparison returns a constructor for a two-operand comparison whose
// result is derived from value.Compare.
func buildComparison(result func(c int) value.Value) constructor {
	return func(b *builder, op string, arg document.Node) (Expression, error) {
		exprs, err := b.exactly(op, arg, 2, "[<expression1>, <expression2>]")
		if err != nil {
			return nil, err
		}
		lhs, rhs := exprs[0], exprs[1]
		return Func(func(rec *value.Record) (value.Value, error) {
			a, err := lhs.Evaluate(rec)
			if err != nil {
				return value.Null(), err
			}
			c, err := rhs.Evaluate(rec)
			if err != nil {
				return value.Null(), err
			}
			return result(value.Compare(a, c)), nil
		}), nil
	}
}

func buildSelect(b *builder, op string, arg document.Node) (Expression, error) {
	exprs, err := b.exactly(op, arg, 3, "[<condition>, <then>, <else>]")
	if err != nil {
		return nil, err
	}
	cond, then, otherwise := exprs[0], exprs[1], exprs[2]
	return Func(func(rec *value.Record) (value.Value, error) {
		v, err := cond.Evaluate(rec)
		if err != nil {
			return value.Null(), err
		}
		if value.Truthy(v) {
			return then.Evaluate(rec)
		}
		return otherwise.Evaluate(rec)
	}), nil
}
