package collection

import "github.com/kbukum/aggregator/value"

// List keeps records in insertion order. Its field layout is fixed at
// construction; fields a record lacks are stored as null and fields outside
// the layout are dropped.
type List struct {
	fields []string
	rows   [][]value.Value
}

// NewList returns an empty list with the given field layout.
func NewList(fields []string) *List {
	return &List{fields: copyFields(fields)}
}

// Fields returns the field layout.
func (l *List) Fields() []string { return copyFields(l.fields) }

// Add appends rec.
func (l *List) Add(rec *value.Record) {
	l.rows = append(l.rows, tuple(l.fields, rec))
}

// Size returns the number of records.
func (l *List) Size() int { return len(l.rows) }

// Iterator returns an iterator in insertion order.
func (l *List) Iterator() Iterator {
	i := 0
	return IteratorFunc(func() (*value.Record, bool) {
		if i >= len(l.rows) {
			return nil, false
		}
		rec := toRecord(l.fields, l.rows[i])
		i++
		return rec, true
	})
}
