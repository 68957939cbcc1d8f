package expression

import (
	"github.com/kbukum/aggregator/document"
	"github.com/kbukum/aggregator/value"
)

// valueSet is an insertion-ordered set keyed by value.Key.
type valueSet struct {
	index map[string]struct{}
	items []value.Value
}

func newValueSet() *valueSet {
	return &valueSet{index: make(map[string]struct{})}
}

func (s *valueSet) add(v value.Value) {
	k := value.Key([]value.Value{v})
	if _, ok := s.index[k]; ok {
		return
	}
	s.index[k] = struct{}{}
	s.items = append(s.items, v)
}

func (s *valueSet) has(v value.Value) bool {
	_, ok := s.index[value.Key([]value.Value{v})]
	return ok
}

func (s *valueSet) list() value.Value { return value.List(s.items...) }

// members treats a list as its elements and anything else as a one-element
// set.
func members(v value.Value) []value.Value {
	if items, ok := v.AsList(); ok {
		return items
	}
	return []value.Value{v}
}

// buildMix intersects its operands. A null operand or an empty intermediate
// result yields an empty list.
func buildMix(b *builder, op string, arg document.Node) (Expression, error) {
	exprs, err := b.operands(op, arg)
	if err != nil {
		return nil, err
	}
	return Func(func(rec *value.Record) (value.Value, error) {
		var acc *valueSet
		for _, e := range exprs {
			v, err := e.Evaluate(rec)
			if err != nil {
				return value.Null(), err
			}
			if v.IsNull() {
				return value.List(), nil
			}
			next := newValueSet()
			for _, m := range members(v) {
				if acc == nil || acc.has(m) {
					next.add(m)
				}
			}
			acc = next
			if len(acc.items) == 0 {
				break
			}
		}
		return acc.list(), nil
	}), nil
}

// buildUnion merges its operands, skipping nulls.
func buildUnion(b *builder, op string, arg document.Node) (Expression, error) {
	exprs, err := b.operands(op, arg)
	if err != nil {
		return nil, err
	}
	return Func(func(rec *value.Record) (value.Value, error) {
		acc := newValueSet()
		for _, e := range exprs {
			v, err := e.Evaluate(rec)
			if err != nil {
				return value.Null(), err
			}
			if v.IsNull() {
				continue
			}
			for _, m := range members(v) {
				acc.add(m)
			}
		}
		return acc.list(), nil
	}), nil
}

func buildSize(b *builder, op string, arg document.Node) (Expression, error) {
	e, err := b.unary(op, arg)
	if err != nil {
		return nil, err
	}
	return Func(func(rec *value.Record) (value.Value, error) {
		v, err := e.Evaluate(rec)
		if err != nil {
			return value.Null(), err
		}
		switch {
		case v.IsNull():
			return value.Int(0), nil
		case v.IsCollection():
			return value.Int(int64(v.Len())), nil
		}
		return value.Int(1), nil
	}), nil
}
