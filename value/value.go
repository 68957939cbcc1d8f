package value

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind enumerates the runtime types a Value can hold.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindBytes
	KindList
	KindRecord
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindNumber: "number",
	KindString: "string",
	KindBytes:  "bytes",
	KindList:   "list",
	KindRecord: "record",
}

// String returns the kind name. Cross-kind ordering compares these names.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is an immutable dynamically typed value. The zero Value is null.
type Value struct {
	kind Kind
	flag bool // bool payload, or "integral" for numbers
	num  float64
	str  string
	raw  []byte
	list []Value
	rec  *Record
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Number wraps a floating point number.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Int wraps an integer. Integral numbers render without a fractional part.
func Int(i int64) Value { return Value{kind: KindNumber, num: float64(i), flag: true} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bytes wraps a raw byte sequence. The slice is not copied.
func Bytes(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{kind: KindBytes, raw: b}
}

// List wraps a list of values. The slice is not copied.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// RecordOf wraps a record. A nil record becomes null.
func RecordOf(r *Record) Value {
	if r == nil {
		return Null()
	}
	return Value{kind: KindRecord, rec: r}
}

// Kind reports the runtime type.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumber reports whether v is a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsCollection reports whether v is a list.
func (v Value) IsCollection() bool { return v.kind == KindList }

// Integral reports whether v is a number that was built from an integer.
func (v Value) Integral() bool { return v.kind == KindNumber && v.flag }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) { return v.flag, v.kind == KindBool }

// AsNumber returns the numeric payload as a double.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsInt returns the numeric payload truncated to an integer.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return int64(v.num), true
}

// AsString returns the string payload.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsBytes returns the bytes payload.
func (v Value) AsBytes() ([]byte, bool) { return v.raw, v.kind == KindBytes }

// AsList returns the list payload.
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

// AsRecord returns the record payload.
func (v Value) AsRecord() (*Record, bool) { return v.rec, v.kind == KindRecord }

// Len returns the number of elements of a list, or -1 for other kinds.
func (v Value) Len() int {
	if v.kind != KindList {
		return -1
	}
	return len(v.list)
}

// String renders v as text. Null renders as "null"; non-integral whole
// numbers keep a ".0" suffix so 5 and 5.0 stay distinguishable.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindNumber:
		return formatNumber(v.num, v.flag)
	case KindString:
		return v.str
	case KindBytes:
		return hex.EncodeToString(v.raw)
	case KindList:
		var b strings.Builder
		b.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(item.String())
		}
		b.WriteByte(']')
		return b.String()
	case KindRecord:
		return v.rec.String()
	}
	return ""
}

func formatNumber(f float64, integral bool) string {
	if integral && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}

// Native converts v to plain Go values: nil, bool, int64, float64, string,
// []byte, []any and map[string]any.
func (v Value) Native() any {
	switch v.kind {
	case KindBool:
		return v.flag
	case KindNumber:
		if v.flag {
			return int64(v.num)
		}
		return v.num
	case KindString:
		return v.str
	case KindBytes:
		return v.raw
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Native()
		}
		return out
	case KindRecord:
		return v.rec.Native()
	}
	return nil
}

// From converts a Go value into a Value. Unsupported types render as strings.
func From(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case *Record:
		return RecordOf(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return Int(int64(t))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		return Int(int64(t))
	case float32:
		return Number(float64(t))
	case float64:
		return Number(t)
	case string:
		return String(t)
	case []byte:
		return Bytes(t)
	case []Value:
		return List(t...)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = From(item)
		}
		return List(items...)
	case map[string]any:
		return RecordOf(RecordFromMap(t))
	}
	return String(fmt.Sprint(x))
}
