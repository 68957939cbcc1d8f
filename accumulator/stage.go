package accumulator

import (
	"github.com/kbukum/aggregator/collection"
	"github.com/kbukum/aggregator/value"
)

// Stage is one step of a pipeline. A stage with no downstream is terminal
// and materializes its own collection.
type Stage interface {
	Put(rec *value.Record) error
	Get() (collection.Collection, error)
}

// buffer is the terminal storage shared by $match, $skip and $limit. Its
// field layout is taken from the first record it receives.
type buffer struct {
	list *collection.List
}

func (b *buffer) add(rec *value.Record) {
	if b.list == nil {
		b.list = collection.NewList(rec.Keys())
	}
	b.list.Add(rec)
}

func (b *buffer) result() collection.Collection {
	if b.list == nil {
		return collection.NewList(nil)
	}
	return b.list
}

// forward hands rec to next, or buffers it when the stage is terminal.
func forward(next Stage, buf *buffer, rec *value.Record) error {
	if next != nil {
		return next.Put(rec)
	}
	buf.add(rec)
	return nil
}

func drain(next Stage, buf *buffer) (collection.Collection, error) {
	if next != nil {
		return next.Get()
	}
	return buf.result(), nil
}

// replay pushes every record of c into next and returns next's result.
func replay(c collection.Collection, next Stage) (collection.Collection, error) {
	it := c.Iterator()
	for rec, ok := it.Next(); ok; rec, ok = it.Next() {
		if err := next.Put(rec); err != nil {
			return nil, err
		}
	}
	return next.Get()
}
