// Package condition builds boolean predicates that are evaluated against a
// single field value.
//
//	5                                  implicit {"$eq": 5}
//	{"$gt": 1, "$lt": 9}               implicit $and over the keys
//	{"$in": ["a", "b"]}                membership by value.Compare
//	{"$or": [{"$lt": 0}, {"$gt": 9}]}  combinator over sub-conditions
//	{"$exists": false}                 value is null
package condition

import (
	"strings"

	"github.com/google/btree"

	"github.com/kbukum/aggregator/document"
	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/value"
)

// Condition tests one value.
type Condition interface {
	Evaluate(v value.Value) (bool, error)
}

// Func adapts a plain function to Condition.
type Func func(v value.Value) (bool, error)

// Evaluate calls f(v).
func (f Func) Evaluate(v value.Value) (bool, error) { return f(v) }

type constructor func(op string, arg document.Node) (Condition, error)

var operators map[string]constructor

func init() {
	operators = map[string]constructor{
		"and": buildCombinator(func(cs []Condition) Condition { return allOf(cs) }),
		"or":  buildCombinator(func(cs []Condition) Condition { return anyOf(cs) }),
		"nor": buildCombinator(func(cs []Condition) Condition { return noneOf(cs) }),
		"not": buildCombinator(func(cs []Condition) Condition { return notAll(cs) }),

		"eq":  buildCompare(func(c int) bool { return c == 0 }),
		"ne":  buildCompare(func(c int) bool { return c != 0 }),
		"gt":  buildCompare(func(c int) bool { return c > 0 }),
		"gte": buildCompare(func(c int) bool { return c >= 0 }),
		"lt":  buildCompare(func(c int) bool { return c < 0 }),
		"lte": buildCompare(func(c int) bool { return c <= 0 }),

		"in":     buildMembership(true),
		"nin":    buildMembership(false),
		"exists": buildExists,
	}
}

// IsCombinator reports whether key names a boolean combinator ($and, $or,
// $nor, $not).
func IsCombinator(key string) bool {
	switch key {
	case "$and", "$or", "$nor", "$not":
		return true
	}
	return false
}

// Build compiles a condition description.
func Build(node document.Node) (Condition, error) {
	if node.Kind() != document.Object {
		return equal(node), nil
	}
	switch node.Len() {
	case 0:
		return nil, errors.Build("condition", "empty operator")
	case 1:
		key, arg, _ := node.Single()
		return buildOperator(key, arg)
	}
	conds := make([]Condition, 0, node.Len())
	err := node.Each(func(key string, arg document.Node) error {
		c, err := buildOperator(key, arg)
		if err != nil {
			return err
		}
		conds = append(conds, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return allOf(conds), nil
}

// Parse is Build over JSON text.
func Parse(text string) (Condition, error) {
	node, err := document.Parse(text)
	if err != nil {
		return nil, errors.Build("condition", "malformed description").WithCause(err)
	}
	return Build(node)
}

func buildOperator(key string, arg document.Node) (Condition, error) {
	if strings.HasPrefix(key, "$") {
		if ctor, ok := operators[key[1:]]; ok {
			return ctor(key, arg)
		}
	}
	return nil, errors.Buildf("condition", "unknown opname[%s]", key)
}

// Operand converts a description literal to the value a leaf compares
// against. The string "nil" stands for null.
func Operand(node document.Node) value.Value {
	if s, ok := node.Str(); ok && s == "nil" {
		return value.Null()
	}
	return node.Value()
}

func equal(node document.Node) Condition {
	want := Operand(node)
	return Func(func(v value.Value) (bool, error) {
		return value.Compare(v, want) == 0, nil
	})
}

func buildCompare(accept func(c int) bool) constructor {
	return func(_ string, arg document.Node) (Condition, error) {
		want := Operand(arg)
		return Func(func(v value.Value) (bool, error) {
			return accept(value.Compare(v, want)), nil
		}), nil
	}
}

func buildMembership(in bool) constructor {
	return func(op string, arg document.Node) (Condition, error) {
		if arg.Kind() != document.Array || arg.Len() == 0 {
			return nil, errors.Buildf(op, "[<value>, ....] - need to provide one or more parameters")
		}
		set := btree.NewG[value.Value](8, func(a, b value.Value) bool {
			return value.Compare(a, b) < 0
		})
		for _, item := range arg.Items() {
			set.ReplaceOrInsert(Operand(item))
		}
		return Func(func(v value.Value) (bool, error) {
			return set.Has(v) == in, nil
		}), nil
	}
}

// buildExists tests null-ness. A truthy argument requires a non-null value.
func buildExists(_ string, arg document.Node) (Condition, error) {
	want := value.Truthy(Operand(arg))
	return Func(func(v value.Value) (bool, error) {
		return !v.IsNull() == want, nil
	}), nil
}
