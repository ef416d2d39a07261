package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerStampsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: FormatJSON, Output: &buf, Level: slog.LevelInfo}).
		WithComponent(ComponentGenerator)

	logger.Info("period generated", FieldPeriod, "01/2024")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not json: %v (%s)", err, buf.String())
	}
	if rec[FieldComponent] != ComponentGenerator {
		t.Errorf("component = %v", rec[FieldComponent])
	}
	if rec[FieldPeriod] != "01/2024" {
		t.Errorf("period = %v", rec[FieldPeriod])
	}
	if n := strings.Count(buf.String(), `"component"`); n != 1 {
		t.Errorf("component key appears %d times", n)
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: FormatText, Output: &buf, Level: slog.LevelWarn})
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithRunID("abc").
		WithPeriod("02/2024").
		WithBalances("0.00", "12.50").
		WithSink("file", "").
		WithError(errors.New("boom"))

	if f[FieldRunID] != "abc" || f[FieldClosing] != "12.50" || f[FieldError] != "boom" {
		t.Fatalf("unexpected fields: %v", f)
	}
	if _, ok := f[FieldRef]; ok {
		t.Error("empty ref should not be recorded")
	}
	if got := len(f.ToSlice()); got != len(f)*2 {
		t.Errorf("ToSlice length = %d", got)
	}
	if _, ok := NewFields().WithError(nil)[FieldError]; ok {
		t.Error("nil error should not be recorded")
	}
}
