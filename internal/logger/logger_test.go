package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)

	l.Debug("", "debug message")
	l.Info("", "info message")
	l.Warn("", "warn message")
	l.Error("", "error message")

	out := buf.String()

	if strings.Contains(out, "debug message") {
		t.Error("expected debug message to be filtered at Info level")
	}
	if !strings.Contains(out, "info message") {
		t.Error("expected info message in output")
	}
	if !strings.Contains(out, "warn message") {
		t.Error("expected warn message in output")
	}
	if !strings.Contains(out, "error message") {
		t.Error("expected error message in output")
	}
}

func TestLoggerScope(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug)

	l.Info("session", "with scope")
	l.Info("", "without scope")

	out := buf.String()

	if !strings.Contains(out, "[session] with scope") {
		t.Errorf("expected scope tag in output, got: %s", out)
	}
	if strings.Contains(out, "[] without scope") {
		t.Errorf("expected no empty scope tag, got: %s", out)
	}
}

func TestLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelError)

	l.Info("", "filtered")
	l.SetLevel(LevelDebug)
	l.Debug("", "visible")

	out := buf.String()

	if strings.Contains(out, "filtered") {
		t.Error("expected info message to be filtered at Error level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("expected debug message after lowering level")
	}
}

func TestLevelString(t *testing.T) {
	cases := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, c := range cases {
		if got := c.level.String(); got != c.want {
			t.Errorf("expected '%s', got '%s'", c.want, got)
		}
	}
}
