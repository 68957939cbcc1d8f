package main

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	jsoniter "github.com/json-iterator/go"

	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/version"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "disabled"))
	err := cmd.Execute()
	return out.String(), err
}

func decodeLines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var recs []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := jsoniter.UnmarshalFromString(line, &m); err != nil {
			t.Fatalf("output line %q: %v", line, err)
		}
		recs = append(recs, m)
	}
	return recs
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunFromStdin(t *testing.T) {
	in := `{"user":"ann","n":2}
{"user":"bob","n":1}
{"user":"ann","n":3}
`
	out, err := execute(t, in, "run",
		"--pipeline", `[{"$group":{"_id":"$user","total":{"$sum":"$n"}}},{"$sort":{"_id":1}}]`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []map[string]any{
		{"_id": "ann", "total": 5.0},
		{"_id": "bob", "total": 1.0},
	}
	if diff := cmp.Diff(want, decodeLines(t, out)); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestRunConcatenatesInputs(t *testing.T) {
	first := writeFile(t, "a.jsonl", `{"v":3}`+"\n"+`{"v":1}`+"\n")
	second := writeFile(t, "b.jsonl", `{"v":2}`)
	pipeline := writeFile(t, "pipeline.json", `[{"$sort":{"v":-1}},{"$limit":2}]`)

	out, err := execute(t, "", "run", "--pipeline-file", pipeline, "--input", first, "--input", second, "--probe-interval", "1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []map[string]any{{"v": 3.0}, {"v": 2.0}}
	if diff := cmp.Diff(want, decodeLines(t, out)); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestRunKeepsBytes(t *testing.T) {
	out, err := execute(t, `{"b":"base64:aGk="}`, "run", "--pipeline", `[{"$limit":1}]`)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != `{"b":"base64:aGk="}` {
		t.Errorf("output = %q", out)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"no pipeline", []string{"run"}, errors.ErrCodeInvalidInput},
		{"two pipelines", []string{"run", "-p", `[{"$limit":1}]`, "-f", "pipeline.json"}, errors.ErrCodeInvalidInput},
		{"bad run id", []string{"run", "-p", `[{"$limit":1}]`, "--run-id", "nope"}, errors.ErrCodeInvalidInput},
		{"missing input", []string{"run", "-p", `[{"$limit":1}]`, "-i", "does-not-exist.jsonl"}, errors.ErrCodeSourceUnavailable},
		{"missing pipeline file", []string{"run", "-f", "does-not-exist.json"}, errors.ErrCodeSourceUnavailable},
		{"unknown stage", []string{"run", "-p", `[{"$nope":1}]`}, errors.ErrCodeBuild},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, `{"a":1}`, tt.args...)
			if !errors.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestRunMissingConfigFile(t *testing.T) {
	_, err := execute(t, "", "run", "-p", `[{"$limit":1}]`, "--config", filepath.Join(t.TempDir(), "missing.yml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected missing config error, got %v", err)
	}
}

func TestRunUsesConfigZone(t *testing.T) {
	cfg := writeFile(t, "aggregate.yml", "engine:\n  default_zone: Not/AZone\n")
	_, err := execute(t, "", "run", "-p", `[{"$limit":1}]`, "--config", cfg)
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected invalid zone to fail validation, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "", "validate", "-p", `[{"$skip":1},{"$limit":2}]`)
	if err != nil {
		t.Fatal(err)
	}
	if out != "ok: $skip -> $limit\n" {
		t.Errorf("output = %q", out)
	}

	_, err = execute(t, "", "validate", "-p", `[{"$limit":"x"}]`)
	if !errors.HasCode(err, errors.ErrCodeBuild) {
		t.Errorf("expected BUILD_ERROR, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, version.Version) {
		t.Errorf("output %q does not start with %q", out, version.Version)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{stderrors.New("plain"), 1},
		{errors.Build("$sort", "bad"), 2},
		{errors.InvalidInput("x", "bad"), 2},
		{errors.ResourceExhausted("used 9 of 10 bytes"), 3},
		{errors.SourceUnavailable("in", stderrors.New("gone")), 1},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestReadPipeline(t *testing.T) {
	file := writeFile(t, "p.json", `[{"$limit":1}]`)
	tests := []struct {
		name         string
		inline, file string
		want         string
		wantErr      string
	}{
		{"inline", `[{"$skip":1}]`, "", `[{"$skip":1}]`, ""},
		{"file", "", file, `[{"$limit":1}]`, ""},
		{"neither", "", "", "", "pipeline: is required"},
		{"blank", "  ", "", "", "pipeline: is required"},
		{"both", "[]", file, "", "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readPipeline(tt.inline, tt.file)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
