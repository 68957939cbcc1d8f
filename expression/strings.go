package expression

import (
	"math"
	"strings"

	"github.com/kbukum/aggregator/document"
	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/value"
)

func buildConcat(b *builder, op string, arg document.Node) (Expression, error) {
	exprs, err := b.operands(op, arg)
	if err != nil {
		return nil, err
	}
	return Func(func(rec *value.Record) (value.Value, error) {
		var sb strings.Builder
		for _, e := range exprs {
			v, err := e.Evaluate(rec)
			if err != nil {
				return value.Null(), err
			}
			sb.WriteString(v.String())
		}
		return value.String(sb.String()), nil
	}), nil
}

// substring works on runes. A non-numeric start reads as 0 and a
// non-numeric length as the rest of the string; the range is clamped to the
// string.
func buildSubstring(b *builder, op string, arg document.Node) (Expression, error) {
	exprs, err := b.exactly(op, arg, 3, "[<string>, <start>, <length>]")
	if err != nil {
		return nil, err
	}
	return Func(func(rec *value.Record) (value.Value, error) {
		vals, err := evalAll(exprs, rec)
		if err != nil {
			return value.Null(), err
		}
		if vals[0].IsNull() {
			return value.Null(), errors.Evaluation(op, "can't take a substring of null")
		}
		runes := []rune(vals[0].String())
		start, okStart := runeOffset(vals[1], 0, len(runes))
		length, okLength := runeOffset(vals[2], len(runes), len(runes))
		if !okStart || !okLength {
			return value.Null(), errors.Evaluationf(op, "invalid range start=%s length=%s", vals[1], vals[2])
		}
		end := min(start+length, len(runes))
		return value.String(string(runes[start:end])), nil
	}), nil
}

// runeOffset reads a non-negative offset clamped to limit. Non-numbers
// yield def; negative numbers are rejected.
func runeOffset(v value.Value, def, limit int) (int, bool) {
	f, ok := v.AsNumber()
	if !ok || math.IsNaN(f) {
		return def, true
	}
	f = math.Trunc(f)
	if f < 0 {
		return 0, false
	}
	if f >= float64(limit) {
		return limit, true
	}
	return int(f), true
}

// buildCase returns a constructor for tolower/toupper. Null passes through.
func buildCase(fn func(string) string) constructor {
	return func(b *builder, op string, arg document.Node) (Expression, error) {
		e, err := b.unary(op, arg)
		if err != nil {
			return nil, err
		}
		return Func(func(rec *value.Record) (value.Value, error) {
			v, err := e.Evaluate(rec)
			if err != nil || v.IsNull() {
				return v, err
			}
			return value.String(fn(v.String())), nil
		}), nil
	}
}
