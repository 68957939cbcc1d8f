package accumulator

import (
	"github.com/kbukum/aggregator/collection"
	"github.com/kbukum/aggregator/document"
	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/value"
)

type sortKey struct {
	field string
	dir   int
}

// sortStage buffers records in a SortedSet. Records that tie on every sort
// key collapse into the first one received.
type sortStage struct {
	next    Stage
	keys    []sortKey
	set     *collection.SortedSet
	drained bool
}

func newSortStage(next Stage, body document.Node, _ *builder) (Stage, error) {
	if body.Kind() != document.Object || body.Len() == 0 {
		return nil, errors.Build(StageSort, "{<field>: <order>, ...} - must contain one or more fields")
	}
	s := &sortStage{next: next}
	err := body.Each(func(field string, order document.Node) error {
		n, ok := order.Number()
		if !ok {
			return errors.Buildf(StageSort, "order of %q must be 1 or -1, got %s", field, order.String())
		}
		dir := -1
		if n > 0 {
			dir = 1
		}
		s.keys = append(s.keys, sortKey{field: field, dir: dir})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// layout is the tuple field order: the first record's fields followed by
// any sort field it lacks, so every sort value is stored.
func (s *sortStage) layout(rec *value.Record) []string {
	fields := rec.Keys()
	for _, k := range s.keys {
		if !rec.Has(k.field) {
			fields = append(fields, k.field)
		}
	}
	return fields
}

// comparator compiles the sort keys against a tuple layout. Keys missing
// from the layout compare as null.
func (s *sortStage) comparator(fields []string) collection.TupleComparator {
	pos := make(map[string]int, len(fields))
	for i, f := range fields {
		pos[f] = i
	}
	index := make([]int, len(s.keys))
	for i, k := range s.keys {
		if p, ok := pos[k.field]; ok {
			index[i] = p
		} else {
			index[i] = -1
		}
	}
	return func(a, b []value.Value) int {
		for i, k := range s.keys {
			p := index[i]
			if p < 0 {
				continue
			}
			if c := value.Compare(a[p], b[p]); c != 0 {
				return c * k.dir
			}
		}
		return 0
	}
}

func (s *sortStage) Put(rec *value.Record) error {
	if s.set == nil {
		fields := s.layout(rec)
		s.set = collection.NewSortedSet(fields, s.comparator(fields))
	}
	s.set.Add(rec)
	return nil
}

func (s *sortStage) Get() (collection.Collection, error) {
	if s.next != nil {
		if s.set == nil || s.drained {
			return s.next.Get()
		}
		s.drained = true
		return replay(s.set, s.next)
	}
	if s.set == nil {
		return collection.NewSortedSet(nil, s.comparator(nil)), nil
	}
	return s.set, nil
}
