package source

import "context"

// Iterator provides pull-based sequential access to a stream of values.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// FromSlice iterates over items in order.
func FromSlice[T any](items []T) Iterator[T] {
	return &sliceIter[T]{items: items}
}

// FromFunc adapts a generator. next is called until it reports exhaustion or
// fails; closer may be nil.
func FromFunc[T any](next func(ctx context.Context) (T, bool, error), closer func() error) Iterator[T] {
	return &funcIter[T]{next: next, closer: closer}
}

// Collect pulls every value and closes the iterator. Values read before a
// failure are returned with the error.
func Collect[T any](ctx context.Context, it Iterator[T]) ([]T, error) {
	defer it.Close()
	var result []T
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return result, err
		}
		if !ok {
			return result, nil
		}
		result = append(result, val)
	}
}

type sliceIter[T any] struct {
	items []T
	pos   int
}

func (it *sliceIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return result, false, err
	}
	if it.pos >= len(it.items) {
		return result, false, nil
	}
	v := it.items[it.pos]
	it.pos++
	return v, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

type funcIter[T any] struct {
	next   func(ctx context.Context) (T, bool, error)
	closer func() error
	done   bool
}

func (it *funcIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	if it.done {
		return result, false, nil
	}
	val, ok, err := it.next(ctx)
	if err != nil || !ok {
		it.done = true
		return result, false, err
	}
	return val, true, nil
}

func (it *funcIter[T]) Close() error {
	if it.closer != nil {
		return it.closer()
	}
	return nil
}
