package accumulator

import (
	"strings"

	"github.com/kbukum/aggregator/collection"
	"github.com/kbukum/aggregator/document"
	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/expression"
	"github.com/kbukum/aggregator/value"
)

const groupUsage = "{_id: <expression>, <field>: {<reducer>: <expression>}, ...}"

type groupField struct {
	name   string
	reduce Reducer
	expr   expression.Expression
}

// groupStage buckets records by key and folds each configured field with
// its reducer. The stored values are read, combined and written back within
// one Put.
type groupStage struct {
	next     Stage
	keyNames []string
	keyExprs []expression.Expression
	fields   []groupField
	groups   *collection.GroupMap
	drained  bool
}

func newGroupStage(next Stage, body document.Node, b *builder) (Stage, error) {
	if body.Kind() != document.Object {
		return nil, errors.Buildf(StageGroup, "%s - invalid parameters", groupUsage)
	}
	s := &groupStage{next: next}
	hasID := false
	err := body.Each(func(name string, spec document.Node) error {
		if name == collection.IDField {
			hasID = true
			return s.buildKey(spec, b)
		}
		f, err := buildGroupField(name, spec, b)
		if err != nil {
			return err
		}
		s.fields = append(s.fields, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !hasID {
		return nil, errors.Buildf(StageGroup, "%s - must specify the '_id' section", groupUsage)
	}
	valueNames := make([]string, len(s.fields))
	for i, f := range s.fields {
		valueNames[i] = f.name
	}
	s.groups = collection.NewGroupMap(s.keyNames, valueNames)
	return s, nil
}

// buildKey accepts an expression, a null, or an object mapping key field
// names to expressions.
func (s *groupStage) buildKey(spec document.Node, b *builder) error {
	if spec.Kind() == document.Object {
		if key, _, ok := spec.Single(); !ok || !strings.HasPrefix(key, "$") {
			if spec.Len() == 0 {
				return errors.Buildf(StageGroup, "%s - '_id' must contain an expression", groupUsage)
			}
			return spec.Each(func(name string, sub document.Node) error {
				e, err := expression.Build(sub, b.exprOpts...)
				if err != nil {
					return err
				}
				s.keyNames = append(s.keyNames, name)
				s.keyExprs = append(s.keyExprs, e)
				return nil
			})
		}
	}
	e, err := expression.Build(spec, b.exprOpts...)
	if err != nil {
		return err
	}
	s.keyNames = []string{collection.IDField}
	s.keyExprs = []expression.Expression{e}
	return nil
}

func buildGroupField(name string, spec document.Node, b *builder) (groupField, error) {
	op, arg, ok := spec.Single()
	if !ok {
		return groupField{}, errors.Buildf(StageGroup, "%s - field %q must contain only one reducer", groupUsage, name)
	}
	reduce, found := reducers[op]
	if !found {
		return groupField{}, errors.Buildf(StageGroup, "%s - unknown reducer[%s]", groupUsage, op)
	}
	e, err := expression.Build(arg, b.exprOpts...)
	if err != nil {
		return groupField{}, err
	}
	return groupField{name: name, reduce: reduce, expr: e}, nil
}

func (s *groupStage) Put(rec *value.Record) error {
	key := value.NewRecord(len(s.keyNames))
	for i, name := range s.keyNames {
		v, err := s.keyExprs[i].Evaluate(rec)
		if err != nil {
			return err
		}
		key.Set(name, v)
	}
	stored, _ := s.groups.Get(key)
	vals := value.NewRecord(len(s.fields))
	for _, f := range s.fields {
		v, err := f.expr.Evaluate(rec)
		if err != nil {
			return err
		}
		vals.Set(f.name, f.reduce(stored.Get(f.name), v))
	}
	s.groups.Put(key, vals)
	return nil
}

func (s *groupStage) Get() (collection.Collection, error) {
	if s.next == nil {
		return s.groups, nil
	}
	if s.drained {
		return s.next.Get()
	}
	s.drained = true
	return replay(s.groups, s.next)
}
