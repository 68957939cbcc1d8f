package value

import (
	"testing"
)

func sampleValues() []Value {
	rec := NewRecord(1)
	rec.Set("a", Int(1))
	return []Value{
		Null(),
		Bool(false),
		Bool(true),
		Int(-3),
		Int(2),
		Number(2.5),
		String(""),
		String("abc"),
		Bytes([]byte{0x01}),
		List(Int(1), Int(2)),
		List(Int(1)),
		RecordOf(rec),
	}
}

func TestCompare_NullRules(t *testing.T) {
	if got := Compare(Null(), Null()); got != 0 {
		t.Errorf("compare(null, null) = %d, want 0", got)
	}
	for _, v := range sampleValues()[1:] {
		if got := Compare(Null(), v); got >= 0 {
			t.Errorf("compare(null, %v) = %d, want < 0", v, got)
		}
		if got := Compare(v, Null()); got <= 0 {
			t.Errorf("compare(%v, null) = %d, want > 0", v, got)
		}
	}
}

func TestCompare_Antisymmetric(t *testing.T) {
	values := sampleValues()
	for _, a := range values {
		for _, b := range values {
			ab, ba := Compare(a, b), Compare(b, a)
			if ab != -ba {
				t.Errorf("compare(%v, %v)=%d but compare(%v, %v)=%d", a, b, ab, b, a, ba)
			}
		}
	}
}

func TestCompare_SameKind(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"bool", Bool(false), Bool(true), -1},
		{"int vs float", Int(2), Number(2.0), 0},
		{"int vs larger float", Int(2), Number(2.5), -1},
		{"strings", String("b"), String("a"), 1},
		{"bytes", Bytes([]byte{1, 2}), Bytes([]byte{1, 3}), -1},
		{"list as text", List(Int(1), Int(2)), List(Int(1), Int(10)), 1},
		{"list prefix as text", List(Int(1)), List(Int(1), Int(2)), 1},
		{"list element", List(Int(3)), List(Int(1), Int(2)), 1},
		{"equal lists", List(String("a"), Int(1)), List(String("a"), Int(1)), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Compare(tc.a, tc.b); got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCompare_CrossKindByName(t *testing.T) {
	// "number" < "string"
	if got := Compare(Int(100), String("1")); got != -1 {
		t.Errorf("got %d, want -1", got)
	}
	// "bool" < "number"
	if got := Compare(Bool(true), Int(0)); got != -1 {
		t.Errorf("got %d, want -1", got)
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{Null(), false},
		{Bool(false), false},
		{Bool(true), true},
		{Int(0), false},
		{Number(0.5), true},
		{String(""), true},
		{List(), true},
	}
	for _, tc := range tests {
		if got := Truthy(tc.v); got != tc.want {
			t.Errorf("Truthy(%v) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestMaxMin(t *testing.T) {
	if got := Max(Null(), Int(1)); !Equal(got, Int(1)) {
		t.Errorf("Max(null, 1) = %v", got)
	}
	if got := Max(Int(4), Int(1)); !Equal(got, Int(4)) {
		t.Errorf("Max(4, 1) = %v", got)
	}
	if got := Min(Null(), Int(1)); !Equal(got, Int(1)) {
		t.Errorf("Min(null, 1) = %v", got)
	}
	if got := Min(Int(1), Null()); !Equal(got, Int(1)) {
		t.Errorf("Min(1, null) = %v", got)
	}
	if got := Min(Int(4), Int(1)); !Equal(got, Int(1)) {
		t.Errorf("Min(4, 1) = %v", got)
	}
}

func TestKey_EqualTuplesCollide(t *testing.T) {
	if Key([]Value{Int(1), String("a")}) != Key([]Value{Number(1), String("a")}) {
		t.Error("equal tuples must share a key")
	}
	if Key([]Value{String("ab"), String("c")}) == Key([]Value{String("a"), String("bc")}) {
		t.Error("length prefix must keep string boundaries apart")
	}
	if Key([]Value{Null()}) == Key([]Value{String("")}) {
		t.Error("null and empty string must differ")
	}
}
