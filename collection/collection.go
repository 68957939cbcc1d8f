// Package collection holds the containers that back pipeline stages. Each
// container stores records as fixed-order tuples and rebuilds records on
// iteration.
package collection

import "github.com/kbukum/aggregator/value"

// Collection is a finite set of records.
type Collection interface {
	Size() int
	// Iterator returns a fresh forward iterator positioned before the
	// first record.
	Iterator() Iterator
}

// Iterator walks a Collection once.
type Iterator interface {
	Next() (*value.Record, bool)
}

// IteratorFunc adapts a function to Iterator.
type IteratorFunc func() (*value.Record, bool)

// Next calls f.
func (f IteratorFunc) Next() (*value.Record, bool) { return f() }

// Records drains c into a slice.
func Records(c Collection) []*value.Record {
	out := make([]*value.Record, 0, c.Size())
	it := c.Iterator()
	for rec, ok := it.Next(); ok; rec, ok = it.Next() {
		out = append(out, rec)
	}
	return out
}

// tuple projects rec onto fields; missing fields read as null.
func tuple(fields []string, rec *value.Record) []value.Value {
	out := make([]value.Value, len(fields))
	for i, f := range fields {
		out[i] = rec.Get(f)
	}
	return out
}

func toRecord(fields []string, vals []value.Value) *value.Record {
	rec := value.NewRecord(len(fields))
	for i, f := range fields {
		rec.Set(f, vals[i])
	}
	return rec
}

func copyFields(fields []string) []string {
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}
