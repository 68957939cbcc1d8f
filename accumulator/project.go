package accumulator

import (
	"github.com/kbukum/aggregator/collection"
	"github.com/kbukum/aggregator/document"
	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/expression"
	"github.com/kbukum/aggregator/value"
)

// projectStage reshapes each record into a new one with one field per
// projection key, in description order.
type projectStage struct {
	next   Stage
	fields []string
	exprs  []expression.Expression
	list   *collection.List
}

func newProjectStage(next Stage, body document.Node, b *builder) (Stage, error) {
	if body.Kind() != document.Object {
		return nil, errors.Build(StageProject, "{<specifications>} - invalid parameters")
	}
	s := &projectStage{next: next}
	err := body.Each(func(field string, def document.Node) error {
		e, err := expression.Build(def, b.exprOpts...)
		if err != nil {
			return err
		}
		s.fields = append(s.fields, field)
		s.exprs = append(s.exprs, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.list = collection.NewList(s.fields)
	return s, nil
}

func (s *projectStage) Put(rec *value.Record) error {
	out := value.NewRecord(len(s.fields))
	for i, field := range s.fields {
		v, err := s.exprs[i].Evaluate(rec)
		if err != nil {
			return err
		}
		out.Set(field, v)
	}
	if s.next != nil {
		return s.next.Put(out)
	}
	s.list.Add(out)
	return nil
}

func (s *projectStage) Get() (collection.Collection, error) {
	if s.next != nil {
		return s.next.Get()
	}
	return s.list, nil
}
