package collection

import (
	"github.com/google/btree"

	"github.com/kbukum/aggregator/value"
)

// TupleComparator orders two tuples laid out in a SortedSet's field order.
type TupleComparator func(a, b []value.Value) int

// SortedSet keeps records ordered by an injected comparator. Records the
// comparator ranks equal collapse into one: the first one added stays.
type SortedSet struct {
	fields []string
	cmp    TupleComparator
	tree   *btree.BTreeG[[]value.Value]
}

// NewSortedSet returns an empty set with the given field layout.
func NewSortedSet(fields []string, cmp TupleComparator) *SortedSet {
	return &SortedSet{
		fields: copyFields(fields),
		cmp:    cmp,
		tree: btree.NewG(32, func(a, b []value.Value) bool {
			return cmp(a, b) < 0
		}),
	}
}

// Fields returns the field layout.
func (s *SortedSet) Fields() []string { return copyFields(s.fields) }

// Add inserts rec and reports whether it was kept.
func (s *SortedSet) Add(rec *value.Record) bool {
	t := tuple(s.fields, rec)
	if s.tree.Has(t) {
		return false
	}
	s.tree.ReplaceOrInsert(t)
	return true
}

// Size returns the number of records.
func (s *SortedSet) Size() int { return s.tree.Len() }

// Iterator walks the set in ascending comparator order. Each step seeks
// past the previous tuple, so no snapshot of the set is taken.
func (s *SortedSet) Iterator() Iterator {
	var last []value.Value
	started := false
	return IteratorFunc(func() (*value.Record, bool) {
		var next []value.Value
		found := false
		if !started {
			next, found = s.tree.Min()
			started = true
		} else if last != nil {
			s.tree.AscendGreaterOrEqual(last, func(item []value.Value) bool {
				if s.cmp(item, last) == 0 {
					return true
				}
				next, found = item, true
				return false
			})
		}
		if !found {
			last = nil
			return nil, false
		}
		last = next
		return toRecord(s.fields, next), true
	})
}
