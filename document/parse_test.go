package document

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/value"
)

func TestParse_KeepsObjectKeyOrder(t *testing.T) {
	n, err := Parse(`{"z": 1, "a": {"y": true, "b": null}, "m": [1, 2.5, "x"]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"z", "a", "m"}, n.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	inner, ok := n.Field("a")
	if !ok {
		t.Fatal("expected field a")
	}
	if diff := cmp.Diff([]string{"y", "b"}, inner.Keys()); diff != "" {
		t.Errorf("nested keys mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Scalars(t *testing.T) {
	tests := []struct {
		text     string
		kind     Kind
		integral bool
	}{
		{`null`, Null, false},
		{`true`, Bool, false},
		{`42`, Number, true},
		{`-7`, Number, true},
		{`5.0`, Number, false},
		{`1e3`, Number, false},
		{`"a\"b"`, String, false},
		{`  [ ]  `, Array, false},
		{`{}`, Object, false},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			n, err := Parse(tc.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n.Kind() != tc.kind {
				t.Errorf("kind = %v, want %v", n.Kind(), tc.kind)
			}
			if n.Integral() != tc.integral {
				t.Errorf("integral = %v, want %v", n.Integral(), tc.integral)
			}
		})
	}
}

func TestParse_UnescapesStrings(t *testing.T) {
	n, err := Parse(`{"kéy": "line\nbreak"}`)
	if err != nil {
		t.Fatal(err)
	}
	v, ok := n.Field("kéy")
	if !ok {
		t.Fatalf("expected unescaped key, got %v", n.Keys())
	}
	if s, _ := v.Str(); s != "line\nbreak" {
		t.Errorf("got %q", s)
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, text := range []string{``, `{"a":`, `[1, 2`, `{"a":1} extra`} {
		t.Run(text, func(t *testing.T) {
			_, err := Parse(text)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.HasCode(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("expected INVALID_FORMAT, got %v", err)
			}
		})
	}
}

func TestNode_Single(t *testing.T) {
	n, err := Parse(`{"$match": {"a": 1}}`)
	if err != nil {
		t.Fatal(err)
	}
	key, body, ok := n.Single()
	if !ok || key != "$match" {
		t.Fatalf("Single() = %q, %v", key, ok)
	}
	if body.Kind() != Object {
		t.Errorf("body kind = %v", body.Kind())
	}

	multi, _ := Parse(`{"a": 1, "b": 2}`)
	if _, _, ok := multi.Single(); ok {
		t.Error("two-key object must not be single")
	}
}

func TestNode_Value(t *testing.T) {
	n, err := Parse(`{"b": [1, 2.5], "a": "x", "n": null}`)
	if err != nil {
		t.Fatal(err)
	}
	rec := n.Record()
	if diff := cmp.Diff([]string{"b", "a", "n"}, rec.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	list, _ := rec.Get("b").AsList()
	if len(list) != 2 || !list[0].Integral() || list[1].Integral() {
		t.Errorf("unexpected list %v", rec.Get("b"))
	}
	if !value.Equal(rec.Get("a"), value.String("x")) {
		t.Errorf("a = %v", rec.Get("a"))
	}
	if !rec.Has("n") || !rec.Get("n").IsNull() {
		t.Error("expected explicit null field")
	}
}
