package accumulator

import "github.com/kbukum/aggregator/value"

// Reducer folds a newly evaluated value into a group's stored value. The
// stored value is null for the first record of a group.
type Reducer func(stored, incoming value.Value) value.Value

var reducers = map[string]Reducer{
	"$first": func(stored, incoming value.Value) value.Value {
		if stored.IsNull() {
			return incoming
		}
		return stored
	},
	"$last": func(stored, incoming value.Value) value.Value {
		if incoming.IsNull() {
			return stored
		}
		return incoming
	},
	"$max": value.Max,
	"$min": value.Min,
	"$sum": func(stored, incoming value.Value) value.Value {
		total := 0.0
		if n, ok := value.ToNumber(stored); ok {
			total += n
		}
		if n, ok := value.ToNumber(incoming); ok {
			total += n
		}
		return value.Number(total)
	},
	"$put": putReducer,
}

// putReducer appends incoming to the stored list unless already present.
// List inputs are flattened one level.
func putReducer(stored, incoming value.Value) value.Value {
	items, _ := stored.AsList()
	add := func(v value.Value) {
		for _, have := range items {
			if value.Equal(have, v) {
				return
			}
		}
		items = append(items, v)
	}
	switch {
	case incoming.IsNull():
	case incoming.IsCollection():
		in, _ := incoming.AsList()
		for _, v := range in {
			add(v)
		}
	default:
		add(incoming)
	}
	return value.List(items...)
}
