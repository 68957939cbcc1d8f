package condition

import (
	"github.com/kbukum/aggregator/document"
	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/value"
)

type allOf []Condition

func (cs allOf) Evaluate(v value.Value) (bool, error) {
	for _, c := range cs {
		ok, err := c.Evaluate(v)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

type anyOf []Condition

func (cs anyOf) Evaluate(v value.Value) (bool, error) {
	for _, c := range cs {
		ok, err := c.Evaluate(v)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

type noneOf []Condition

func (cs noneOf) Evaluate(v value.Value) (bool, error) {
	ok, err := anyOf(cs).Evaluate(v)
	return !ok && err == nil, err
}

// notAll accepts when at least one sub-condition rejects.
type notAll []Condition

func (cs notAll) Evaluate(v value.Value) (bool, error) {
	ok, err := allOf(cs).Evaluate(v)
	return !ok && err == nil, err
}

// buildCombinator builds $and/$or/$nor/$not. The argument is an array whose
// elements are either operator objects, each key contributing one
// sub-condition, or literals meaning equality.
func buildCombinator(wrap func([]Condition) Condition) constructor {
	return func(op string, arg document.Node) (Condition, error) {
		if arg.Kind() != document.Array {
			return nil, errors.Buildf(op, "[<condition>, ....] - expected an array, got %s", arg.Kind())
		}
		var conds []Condition
		for _, item := range arg.Items() {
			if item.Kind() != document.Object {
				conds = append(conds, equal(item))
				continue
			}
			err := item.Each(func(key string, sub document.Node) error {
				c, err := buildOperator(key, sub)
				if err != nil {
					return err
				}
				conds = append(conds, c)
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
		if len(conds) == 0 {
			return nil, errors.Buildf(op, "[<condition>, ....] - need to provide one or more parameters")
		}
		return wrap(conds), nil
	}
}
