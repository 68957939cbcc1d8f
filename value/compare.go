package value

import (
	"bytes"
	"cmp"
)

// Compare orders two values and returns -1, 0 or 1.
//
// Null sorts before everything and equals only null. Values of the same
// kind use their natural order: false < true, numbers numerically, strings
// and bytes lexicographically. Lists and records have no natural order and
// compare by their rendered text, so [1, 2] sorts after [1, 10]. Values of
// different kinds compare by kind name.
func Compare(a, b Value) int {
	if a.kind == KindNull || b.kind == KindNull {
		switch {
		case a.kind == b.kind:
			return 0
		case a.kind == KindNull:
			return -1
		default:
			return 1
		}
	}
	if a.kind != b.kind {
		return cmp.Compare(a.kind.String(), b.kind.String())
	}
	switch a.kind {
	case KindBool:
		switch {
		case a.flag == b.flag:
			return 0
		case !a.flag:
			return -1
		default:
			return 1
		}
	case KindNumber:
		return cmp.Compare(a.num, b.num)
	case KindString:
		return cmp.Compare(a.str, b.str)
	case KindBytes:
		return bytes.Compare(a.raw, b.raw)
	case KindList, KindRecord:
		// no natural order: compare the rendered text
		return cmp.Compare(a.String(), b.String())
	}
	return 0
}

// Equal reports whether Compare(a, b) == 0.
func Equal(a, b Value) bool { return Compare(a, b) == 0 }

// Truthy coerces v to a boolean: null is false, booleans are themselves,
// numbers are true when nonzero, everything else is true.
func Truthy(v Value) bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.flag
	case KindNumber:
		return v.num != 0
	}
	return true
}

// Max returns the larger of a and b; a wins ties.
func Max(a, b Value) Value {
	if Compare(a, b) >= 0 {
		return a
	}
	return b
}

// Min returns the smaller of a and b; a wins ties. A null accumulator is
// treated as absent, so any non-null value beats it.
func Min(a, b Value) Value {
	if a.IsNull() {
		return b
	}
	if b.IsNull() {
		return a
	}
	if Compare(a, b) <= 0 {
		return a
	}
	return b
}

// ToNumber returns the numeric payload, or zero and false when v is not a
// number. Arithmetic operators use it to let non-numeric operands
// contribute nothing.
func ToNumber(v Value) (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}
