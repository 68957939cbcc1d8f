package logger

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/kbukum/aggregator/errors"
)

func newJSON(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: level, Format: "json"}, &buf, "aggregate")
	return l, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := jsoniter.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	l, buf := newJSON(t, "invalid-level")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug should be filtered at info, got %q", buf.String())
	}
	l.Info("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("info should be written, got %q", buf.String())
	}
}

func TestLevelIsPerLogger(t *testing.T) {
	quiet, qbuf := newJSON(t, "error")
	loud, lbuf := newJSON(t, "debug")
	quiet.Info("dropped")
	loud.Debug("kept")
	if qbuf.Len() != 0 {
		t.Errorf("error-level logger wrote %q", qbuf.String())
	}
	if lbuf.Len() == 0 {
		t.Error("debug-level logger wrote nothing")
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	if l := NewFromEnv("env-svc"); l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestWithContext(t *testing.T) {
	l, buf := newJSON(t, "info")
	ctx := ContextWithRunID(context.Background(), "run-1")
	ctx = ContextWithTraceID(ctx, "trace-1")
	l.WithContext(ctx).Info("started")
	m := decodeLine(t, buf)
	if m[FieldRunID] != "run-1" || m[FieldTraceID] != "trace-1" {
		t.Errorf("ids missing from %v", m)
	}
	if id, ok := RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Errorf("RunIDFromContext = %q, %v", id, ok)
	}
	if _, ok := RunIDFromContext(context.Background()); ok {
		t.Error("empty context should carry no run id")
	}
}

func TestWithComponentAndFields(t *testing.T) {
	l, buf := newJSON(t, "info")
	l.WithComponent("aggregator").WithFields(Fields(FieldRecordsIn, 3)).Info("done", Fields(FieldStatus, "ok"))
	m := decodeLine(t, buf)
	if m[FieldComponent] != "aggregator" {
		t.Errorf("component = %v", m[FieldComponent])
	}
	if m[FieldRecordsIn] != float64(3) {
		t.Errorf("records_in = %v", m[FieldRecordsIn])
	}
	if m[FieldStatus] != "ok" || m["message"] != "done" {
		t.Errorf("unexpected line %v", m)
	}
}

func TestWithError(t *testing.T) {
	l, buf := newJSON(t, "info")
	l.WithError(stderrors.New("boom")).Error("failed")
	if m := decodeLine(t, buf); m["error"] != "boom" {
		t.Errorf("error = %v", m["error"])
	}
}

func TestNewNop(t *testing.T) {
	// must not panic
	NewNop().Error("ignored")
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "console", NoColor: true}, &buf, "aggregate")
	l.Warn("careful")
	out := buf.String()
	if !strings.Contains(out, "[AGG][WRN]") || !strings.Contains(out, "careful") {
		t.Errorf("unexpected console line %q", out)
	}
}

func TestInitAndGlobal(t *testing.T) {
	Init(Config{Level: "debug", Format: "json", Output: OutputStderr})
	if GetGlobalLogger() == nil {
		t.Fatal("expected global logger to be set after Init")
	}
	// These should not panic
	Debug("debug msg")
	Info("info msg")
	Warn("warn msg")
	Error("error msg")

	custom := NewDefault("custom")
	SetGlobalLogger(custom)
	if GetGlobalLogger() != custom {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
	globalLogger = nil
	if GetGlobalLogger() == nil {
		t.Fatal("expected default global logger to be created")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != OutputStderr || !cfg.Timestamp {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	cfg = Config{Level: "debug", Format: "json", Output: OutputStdout}
	cfg.ApplyDefaults()
	if cfg.Level != "debug" || cfg.Format != "json" || cfg.Output != OutputStdout {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json", Output: OutputStderr}, false},
		{"pretty", Config{Level: "debug", Format: FormatPretty, Output: OutputStdout}, false},
		{"bad level", Config{Level: "loud", Format: "json", Output: OutputStderr}, true},
		{"bad format", Config{Level: "info", Format: "xml", Output: OutputStderr}, true},
		{"bad output", Config{Level: "info", Format: "json", Output: "file"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterAndGet(t *testing.T) {
	l := NewDefault("reg")
	Register("source", l)
	if Get("source") != l {
		t.Error("expected registered logger")
	}
	if Get("unregistered-component") == nil {
		t.Error("unregistered names fall back to a component logger")
	}
	RegisterDefaults("cli")
	if Get("cli") == nil {
		t.Error("expected default component logger")
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "ignored", "dangling")
	if len(m) != 2 || m["a"] != 1 || m["b"] != "two" {
		t.Errorf("Fields = %v", m)
	}
}

func TestErrorFields(t *testing.T) {
	m := ErrorFields("run", stderrors.New("plain"))
	if m[FieldOperation] != "run" || m[FieldError] != "plain" {
		t.Errorf("ErrorFields = %v", m)
	}
	if _, ok := m[FieldErrorCode]; ok {
		t.Error("plain errors carry no code")
	}
	m = ErrorFields("run", errors.Build("pipeline", "empty"))
	if m[FieldErrorCode] != string(errors.ErrCodeBuild) {
		t.Errorf("error_code = %v", m[FieldErrorCode])
	}
}

func TestDurationFields(t *testing.T) {
	m := DurationFields("drain", 1500*time.Millisecond)
	if m[FieldDuration] != int64(1500) {
		t.Errorf("duration = %v", m[FieldDuration])
	}
}

func TestMergeHelpers(t *testing.T) {
	m := MergeWithError(nil, stderrors.New("x"))
	if m[FieldError] != "x" {
		t.Errorf("MergeWithError = %v", m)
	}
	m = MergeWithDuration(m, time.Second)
	if m[FieldDuration] != int64(1000) || m[FieldError] != "x" {
		t.Errorf("MergeWithDuration = %v", m)
	}
}
