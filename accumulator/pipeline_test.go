package accumulator

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/aggregator/collection"
	"github.com/kbukum/aggregator/document"
	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/value"
)

func records(t *testing.T, texts ...string) []*value.Record {
	t.Helper()
	out := make([]*value.Record, 0, len(texts))
	for _, text := range texts {
		n, err := document.Parse(text)
		if err != nil {
			t.Fatalf("parse record %s: %v", text, err)
		}
		out = append(out, n.Record())
	}
	return out
}

func run(t *testing.T, description string, input []*value.Record) collection.Collection {
	t.Helper()
	p, err := Build(description)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, rec := range input {
		if err := p.Put(rec); err != nil {
			t.Fatalf("put %v: %v", rec, err)
		}
	}
	c, err := p.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	return c
}

func natives(c collection.Collection) []map[string]any {
	out := []map[string]any{}
	for _, r := range collection.Records(c) {
		out = append(out, r.Native())
	}
	return out
}

func TestGroup_SumByKey(t *testing.T) {
	c := run(t, `[{"$group": {"_id": "$a", "total": {"$sum": "$b"}}}]`,
		records(t, `{"a":1,"b":2}`, `{"a":1,"b":3}`, `{"a":2,"b":5}`))

	got := natives(c)
	sort.Slice(got, func(i, j int) bool { return got[i]["_id"].(int64) < got[j]["_id"].(int64) })
	want := []map[string]any{
		{"_id": int64(1), "total": 5.0},
		{"_id": int64(2), "total": 5.0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestGroup_Reducers(t *testing.T) {
	c := run(t, `[{"$group": {
		"_id": null,
		"first": {"$first": "$v"},
		"last": {"$last": "$v"},
		"max": {"$max": "$v"},
		"min": {"$min": "$v"},
		"tags": {"$put": "$t"}
	}}]`, records(t,
		`{"v": null, "t": "a"}`,
		`{"v": 4, "t": ["b", "a"]}`,
		`{"v": 9, "t": null}`,
		`{"v": 1, "t": "c"}`,
		`{"v": null, "t": "b"}`,
	))
	want := []map[string]any{{
		"_id":   nil,
		"first": int64(4),
		"last":  int64(1),
		"max":   int64(9),
		"min":   int64(1),
		"tags":  []any{"a", "b", "c"},
	}}
	if diff := cmp.Diff(want, natives(c)); diff != "" {
		t.Errorf("reducers mismatch (-want +got):\n%s", diff)
	}
}

func TestGroup_CompositeKeyFeedsDownstream(t *testing.T) {
	c := run(t, `[
		{"$group": {"_id": {"city": "$c", "y": "$y"}, "n": {"$sum": 1}}},
		{"$project": {"city": "$_id.city", "n": "$n"}},
		{"$sort": {"n": -1}}
	]`, records(t,
		`{"c": "x", "y": 1}`,
		`{"c": "x", "y": 1}`,
		`{"c": "z", "y": 1}`,
	))
	want := []map[string]any{
		{"city": "x", "n": 2.0},
		{"city": "z", "n": 1.0},
	}
	if diff := cmp.Diff(want, natives(c)); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestSort_CollapsesTies(t *testing.T) {
	c := run(t, `[{"$sort": {"x": 1}}]`, records(t, `{"x":1,"y":"A"}`, `{"x":1,"y":"B"}`))
	want := []map[string]any{{"x": int64(1), "y": "A"}}
	if diff := cmp.Diff(want, natives(c)); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestSort_FirstRecordWithoutSortField(t *testing.T) {
	c := run(t, `[{"$sort": {"k": 1}}]`, records(t,
		`{"a": 1}`,
		`{"a": 2, "k": 5}`,
		`{"a": 3, "k": 1}`,
	))
	want := []map[string]any{
		{"a": int64(1), "k": nil},
		{"a": int64(3), "k": int64(1)},
		{"a": int64(2), "k": int64(5)},
	}
	if diff := cmp.Diff(want, natives(c)); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestSort_MultipleKeysInDescriptionOrder(t *testing.T) {
	c := run(t, `[{"$sort": {"b": -1, "a": 1}}]`, records(t,
		`{"a": 2, "b": 1}`,
		`{"a": 1, "b": 1}`,
		`{"a": 3, "b": 2}`,
	))
	want := []map[string]any{
		{"a": int64(3), "b": int64(2)},
		{"a": int64(1), "b": int64(1)},
		{"a": int64(2), "b": int64(1)},
	}
	if diff := cmp.Diff(want, natives(c)); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestSkipThenLimit(t *testing.T) {
	c := run(t, `[{"$skip": 2}, {"$limit": 1}]`, records(t,
		`{"r": 0}`, `{"r": 1}`, `{"r": 2}`, `{"r": 3}`, `{"r": 4}`,
	))
	want := []map[string]any{{"r": int64(2)}}
	if diff := cmp.Diff(want, natives(c)); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_AddIsLenient(t *testing.T) {
	c := run(t, `[{"$project": {"v": {"$add": ["$a", "$b"]}}}]`,
		records(t, `{"a":2,"b":3}`, `{"a":"x","b":3}`))
	got := collection.Records(c)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	for i, want := range []string{"5.0", "3.0"} {
		if s := got[i].Get("v").String(); s != want {
			t.Errorf("record %d: v = %s, want %s", i, s, want)
		}
	}
}

func TestMatch_Combinators(t *testing.T) {
	input := records(t,
		`{"a": 1, "b": 1}`,
		`{"a": 5, "b": 1}`,
		`{"a": 5, "b": 9}`,
		`{"a": 1, "b": 9}`,
	)
	tests := []struct {
		name string
		desc string
		want []int64
	}{
		{"and object", `[{"$match": {"$and": {"a": {"$gt": 2}, "b": {"$gt": 2}}}}]`, []int64{5}},
		{"or object", `[{"$match": {"$or": {"a": {"$gt": 2}, "b": {"$gt": 2}}}}]`, []int64{5, 5, 1}},
		{"nor object", `[{"$match": {"$nor": {"a": {"$gt": 2}, "b": {"$gt": 2}}}}]`, []int64{1}},
		{"not object", `[{"$match": {"$not": {"a": {"$gt": 2}, "b": {"$gt": 2}}}}]`, []int64{1, 5, 1}},
		{"or array", `[{"$match": {"$or": [{"a": 1, "b": 1}, {"a": 5, "b": 9}]}}]`, []int64{1, 5}},
		{"field and combinator", `[{"$match": {"a": 5, "$or": [{"b": 1}]}}]`, []int64{5}},
		{"dotted missing", `[{"$match": {"x.y": {"$exists": false}}}]`, []int64{1, 5, 5, 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got []int64
			for _, r := range collection.Records(run(t, tc.desc, input)) {
				n, _ := r.Get("a").AsInt()
				got = append(got, n)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("matched mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatch_NestedField(t *testing.T) {
	c := run(t, `[{"$match": {"user.age": {"$gte": 18}}}]`,
		records(t, `{"user": {"age": 20}}`, `{"user": {"age": 10}}`, `{"user": null}`))
	if c.Size() != 1 {
		t.Errorf("expected 1 match, got %d", c.Size())
	}
}

func TestEmptyInput_RoundTrip(t *testing.T) {
	tests := []struct {
		desc   string
		fields []string
	}{
		{`[{"$project": {"b": "$x", "a": 1}}]`, []string{"b", "a"}},
		{`[{"$match": {"a": 1}}]`, []string{}},
		{`[{"$skip": 1}]`, []string{}},
		{`[{"$limit": 1}]`, []string{}},
		{`[{"$sort": {"a": 1}}, {"$project": {"z": "$a"}}]`, []string{"z"}},
		{`[{"$group": {"_id": "$a", "n": {"$sum": 1}}}]`, nil},
		{`[{"$sort": {"a": 1}}]`, nil},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			c := run(t, tc.desc, nil)
			if c.Size() != 0 {
				t.Errorf("size = %d, want 0", c.Size())
			}
			if _, ok := c.Iterator().Next(); ok {
				t.Error("expected empty iterator")
			}
			if tc.fields == nil {
				return
			}
			list, ok := c.(*collection.List)
			if !ok {
				t.Fatalf("expected *collection.List, got %T", c)
			}
			if diff := cmp.Diff(tc.fields, list.Fields()); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name     string
		desc     string
		fragment string
	}{
		{"malformed", `[{"$match": `, "pipeline"},
		{"not array", `{"$match": {}}`, "pipeline"},
		{"empty", `[]`, "pipeline"},
		{"two keys", `[{"$skip": 1, "$limit": 1}]`, "pipeline"},
		{"unknown stage", `[{"$unwind": "$a"}]`, "pipeline"},
		{"group without id", `[{"$group": {"n": {"$sum": 1}}}]`, "$group"},
		{"group unknown reducer", `[{"$group": {"_id": 1, "n": {"$avg": 1}}}]`, "$group"},
		{"group two reducers", `[{"$group": {"_id": 1, "n": {"$sum": 1, "$max": 1}}}]`, "$group"},
		{"sort empty", `[{"$sort": {}}]`, "$sort"},
		{"sort bad order", `[{"$sort": {"a": "up"}}]`, "$sort"},
		{"skip not number", `[{"$skip": "2"}]`, "$skip"},
		{"limit not number", `[{"$limit": [1]}]`, "$limit"},
		{"project not object", `[{"$project": 1}]`, "$project"},
		{"project bad expression", `[{"$project": {"a": {"$nope": 1}}}]`, "expression"},
		{"match bad condition", `[{"$match": {"a": {"$in": []}}}]`, "$in"},
		{"match empty combinator", `[{"$match": {"$or": []}}]`, "$match"},
		{"stage after bad stage", `[{"$bogus": 1}, {"$limit": 1}]`, "pipeline"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.desc)
			appErr, ok := errors.AsAppError(err)
			if !ok || appErr.Code != errors.ErrCodeBuild {
				t.Fatalf("expected BUILD_ERROR, got %v", err)
			}
			if appErr.Details["fragment"] != tc.fragment {
				t.Errorf("fragment = %v, want %s", appErr.Details["fragment"], tc.fragment)
			}
		})
	}
}

func TestPut_ErrorCarriesDescription(t *testing.T) {
	desc := `[{"$project": {"q": {"$divide": ["$a", "$b"]}}}]`
	p, err := Build(desc)
	if err != nil {
		t.Fatal(err)
	}
	err = p.Put(records(t, `{"a": "x", "b": 1}`)[0])
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeEvaluation {
		t.Fatalf("expected EVALUATION_ERROR, got %v", err)
	}
	if appErr.Details["pipeline"] != desc {
		t.Errorf("pipeline detail = %v", appErr.Details["pipeline"])
	}
	cause, ok := errors.AsAppError(appErr.Cause)
	if !ok || cause.Details["operator"] != "$divide" {
		t.Errorf("expected $divide cause, got %v", appErr.Cause)
	}
}

func TestGet_ErrorFromReplayIsNotWrapped(t *testing.T) {
	p, err := Build(`[{"$group": {"_id": "$a"}}, {"$project": {"x": {"$stol": "$_id"}}}]`)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Put(records(t, `{"a": "abc"}`)[0]); err != nil {
		t.Fatal(err)
	}
	_, err = p.Get()
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Details["operator"] != "$stol" {
		t.Errorf("expected raw $stol error, got %v", err)
	}
}

func TestPipeline_Stages(t *testing.T) {
	p, err := Build(`[{"$match": {"a": 1}}, {"$sort": {"a": 1}}, {"$limit": 3}]`)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"$match", "$sort", "$limit"}, p.Stages()); diff != "" {
		t.Errorf("stages mismatch (-want +got):\n%s", diff)
	}
}
