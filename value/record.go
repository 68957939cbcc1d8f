package value

import (
	"sort"
	"strings"
)

// Record is an ordered, mutable mapping from field name to Value. Fields
// iterate in the order they were first set. A Record is owned by whoever
// currently holds it and is not safe for concurrent mutation.
type Record struct {
	keys   []string
	fields map[string]Value
}

// NewRecord returns an empty record sized for capacity fields.
func NewRecord(capacity int) *Record {
	return &Record{
		keys:   make([]string, 0, capacity),
		fields: make(map[string]Value, capacity),
	}
}

// RecordFromMap builds a record from a Go map. Map iteration order is
// random, so fields are added in sorted key order.
func RecordFromMap(m map[string]any) *Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	r := NewRecord(len(keys))
	for _, k := range keys {
		r.Set(k, From(m[k]))
	}
	return r
}

// Set stores v under key, keeping the key's original position if present.
func (r *Record) Set(key string, v Value) {
	if _, ok := r.fields[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = v
}

// Get returns the value for key, or null when absent.
func (r *Record) Get(key string) Value {
	if r == nil {
		return Null()
	}
	return r.fields[key]
}

// Lookup returns the value for key and whether the key is present.
func (r *Record) Lookup(key string) (Value, bool) {
	if r == nil {
		return Null(), false
	}
	v, ok := r.fields[key]
	return v, ok
}

// Has reports whether key is present (even if its value is null).
func (r *Record) Has(key string) bool {
	_, ok := r.Lookup(key)
	return ok
}

// Delete removes key.
func (r *Record) Delete(key string) {
	if _, ok := r.fields[key]; !ok {
		return
	}
	delete(r.fields, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns a copy of the field names in order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Range calls fn for each field in order until fn returns false.
func (r *Record) Range(fn func(key string, v Value) bool) {
	if r == nil {
		return
	}
	for _, k := range r.keys {
		if !fn(k, r.fields[k]) {
			return
		}
	}
}

// Clone returns a shallow copy.
func (r *Record) Clone() *Record {
	c := NewRecord(r.Len())
	r.Range(func(k string, v Value) bool {
		c.Set(k, v)
		return true
	})
	return c
}

// Native converts the record to a map[string]any.
func (r *Record) Native() map[string]any {
	out := make(map[string]any, r.Len())
	r.Range(func(k string, v Value) bool {
		out[k] = v.Native()
		return true
	})
	return out
}

// String renders the record as {k=v, ...} in field order.
func (r *Record) String() string {
	var b strings.Builder
	b.WriteByte('{')
	i := 0
	r.Range(func(k string, v Value) bool {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v.String())
		i++
		return true
	})
	b.WriteByte('}')
	return b.String()
}
