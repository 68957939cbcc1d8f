// Package document parses pipeline descriptions and JSON records into an
// ordered tree. Object keys keep their textual order, which the engine
// relies on for projection output and sort key priority.
package document

import (
	"strconv"

	"github.com/kbukum/aggregator/value"
)

// Kind is the JSON type of a Node.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Node is one parsed JSON value.
type Node struct {
	kind     Kind
	flag     bool
	integral bool
	num      float64
	str      string
	items    []Node
	keys     []string
	raw      string
}

// Kind reports the JSON type.
func (n Node) Kind() Kind { return n.kind }

// IsNull reports whether the node is a JSON null.
func (n Node) IsNull() bool { return n.kind == Null }

// Bool returns the boolean payload.
func (n Node) Bool() (bool, bool) { return n.flag, n.kind == Bool }

// Number returns the numeric payload.
func (n Node) Number() (float64, bool) { return n.num, n.kind == Number }

// Integral reports whether a number was written without fraction or exponent.
func (n Node) Integral() bool { return n.kind == Number && n.integral }

// Str returns the unescaped string payload.
func (n Node) Str() (string, bool) { return n.str, n.kind == String }

// Len returns the number of array elements or object fields.
func (n Node) Len() int {
	switch n.kind {
	case Array:
		return len(n.items)
	case Object:
		return len(n.keys)
	}
	return 0
}

// Items returns the array elements.
func (n Node) Items() []Node {
	if n.kind != Array {
		return nil
	}
	return n.items
}

// Keys returns the object keys in source order.
func (n Node) Keys() []string {
	if n.kind != Object {
		return nil
	}
	return n.keys
}

// Field returns the value of an object key.
func (n Node) Field(key string) (Node, bool) {
	if n.kind != Object {
		return Node{}, false
	}
	for i, k := range n.keys {
		if k == key {
			return n.items[i], true
		}
	}
	return Node{}, false
}

// Each calls fn for every object field in source order and stops at the
// first error.
func (n Node) Each(fn func(key string, v Node) error) error {
	if n.kind != Object {
		return nil
	}
	for i, k := range n.keys {
		if err := fn(k, n.items[i]); err != nil {
			return err
		}
	}
	return nil
}

// Single returns the key and value of a one-field object.
func (n Node) Single() (string, Node, bool) {
	if n.kind != Object || len(n.keys) != 1 {
		return "", Node{}, false
	}
	return n.keys[0], n.items[0], true
}

// String returns the node's JSON text as it appeared in the source.
func (n Node) String() string { return n.raw }

// Value converts the node into a runtime value. Objects become records with
// their key order intact.
func (n Node) Value() value.Value {
	switch n.kind {
	case Bool:
		return value.Bool(n.flag)
	case Number:
		if n.integral {
			return value.Int(int64(n.num))
		}
		return value.Number(n.num)
	case String:
		return value.String(n.str)
	case Array:
		items := make([]value.Value, len(n.items))
		for i, item := range n.items {
			items[i] = item.Value()
		}
		return value.List(items...)
	case Object:
		return value.RecordOf(n.Record())
	}
	return value.Null()
}

// Record converts an object node into a record. Other kinds yield nil.
func (n Node) Record() *value.Record {
	if n.kind != Object {
		return nil
	}
	rec := value.NewRecord(len(n.keys))
	for i, k := range n.keys {
		rec.Set(k, n.items[i].Value())
	}
	return rec
}
