package accumulator

import (
	"strings"

	"github.com/kbukum/aggregator/collection"
	"github.com/kbukum/aggregator/condition"
	"github.com/kbukum/aggregator/document"
	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/value"
)

// fieldTest applies a condition to one field of a record.
type fieldTest struct {
	field string
	cond  condition.Condition
}

func (f fieldTest) accept(rec *value.Record) (bool, error) {
	return f.cond.Evaluate(fieldValue(rec, f.field))
}

// fieldValue reads field from rec. A dotted name that is not itself a field
// walks nested records.
func fieldValue(rec *value.Record, field string) value.Value {
	if v, ok := rec.Lookup(field); ok || !strings.Contains(field, ".") {
		return v
	}
	cur := rec
	var v value.Value
	for _, part := range strings.Split(field, ".") {
		if cur == nil {
			return value.Null()
		}
		v = cur.Get(part)
		cur, _ = v.AsRecord()
	}
	return v
}

// clause is a conjunction of field tests.
type clause []fieldTest

func (c clause) accept(rec *value.Record) (bool, error) {
	for _, t := range c {
		ok, err := t.accept(rec)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// matcher is one top-level key of a $match body.
type matcher struct {
	combinator string
	clauses    []clause
}

func (m matcher) accept(rec *value.Record) (bool, error) {
	switch m.combinator {
	case "$or", "$nor":
		hit := false
		for _, c := range m.clauses {
			ok, err := c.accept(rec)
			if err != nil {
				return false, err
			}
			if ok {
				hit = true
				break
			}
		}
		return hit == (m.combinator == "$or"), nil
	case "$not":
		for _, c := range m.clauses {
			ok, err := c.accept(rec)
			if err != nil {
				return false, err
			}
			if !ok {
				return true, nil
			}
		}
		return false, nil
	}
	for _, c := range m.clauses {
		ok, err := c.accept(rec)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

type matchStage struct {
	next     Stage
	buf      buffer
	matchers []matcher
}

func newMatchStage(next Stage, body document.Node, _ *builder) (Stage, error) {
	if body.Kind() != document.Object {
		return nil, errors.Build(StageMatch, "{<field>: {<condition>}, ...} - invalid parameters")
	}
	s := &matchStage{next: next}
	err := body.Each(func(key string, def document.Node) error {
		m, err := buildMatcher(key, def)
		if err != nil {
			return err
		}
		s.matchers = append(s.matchers, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// buildMatcher builds a field test, or for $and/$or/$nor/$not a combinator
// whose body is either an object of field conditions, each field forming a
// clause, or an array of such objects, each element forming a clause.
func buildMatcher(key string, def document.Node) (matcher, error) {
	if !condition.IsCombinator(key) {
		t, err := buildFieldTest(key, def)
		if err != nil {
			return matcher{}, err
		}
		return matcher{clauses: []clause{{t}}}, nil
	}
	m := matcher{combinator: key}
	switch def.Kind() {
	case document.Object:
		err := def.Each(func(field string, cond document.Node) error {
			t, err := buildFieldTest(field, cond)
			if err != nil {
				return err
			}
			m.clauses = append(m.clauses, clause{t})
			return nil
		})
		if err != nil {
			return matcher{}, err
		}
	case document.Array:
		for _, item := range def.Items() {
			if item.Kind() != document.Object || item.Len() == 0 {
				return matcher{}, errors.Buildf(StageMatch, "%s: [{<field>: {<condition>}}, ...] - invalid element %s", key, item.String())
			}
			var c clause
			err := item.Each(func(field string, cond document.Node) error {
				t, err := buildFieldTest(field, cond)
				if err != nil {
					return err
				}
				c = append(c, t)
				return nil
			})
			if err != nil {
				return matcher{}, err
			}
			m.clauses = append(m.clauses, c)
		}
	default:
		return matcher{}, errors.Buildf(StageMatch, "%s: {<field>: {<condition>}, ...} - invalid parameters", key)
	}
	if len(m.clauses) == 0 {
		return matcher{}, errors.Buildf(StageMatch, "%s - need to provide one or more conditions", key)
	}
	return m, nil
}

func buildFieldTest(field string, def document.Node) (fieldTest, error) {
	cond, err := condition.Build(def)
	if err != nil {
		return fieldTest{}, err
	}
	return fieldTest{field: field, cond: cond}, nil
}

func (s *matchStage) Put(rec *value.Record) error {
	for _, m := range s.matchers {
		ok, err := m.accept(rec)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	return forward(s.next, &s.buf, rec)
}

func (s *matchStage) Get() (collection.Collection, error) { return drain(s.next, &s.buf) }
