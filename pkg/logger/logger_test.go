package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestWriterLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf)

	l.Info("tool discovered", map[string]any{
		"name":  "list_resources",
		"count": 3,
	})

	out := buf.String()
	for _, want := range []string{"tool discovered", "name=list_resources", "count=3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
	if strings.Index(out, "count=") > strings.Index(out, "name=") {
		t.Fatalf("expected fields in sorted order, got %q", out)
	}
}

func TestWriterLoggerError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf)

	l.Error("turn failed", errors.New("boom"))
	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("expected error text in output, got %q", buf.String())
	}
}

func TestDebugRespectsEnabled(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf)

	Debug(false, l, "hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output when disabled, got %q", buf.String())
	}

	Debug(true, l, "shown 1", nil)
	if !strings.Contains(buf.String(), "shown 1") {
		t.Fatalf("expected debug output, got %q", buf.String())
	}
}

func TestHelpersTolerateNilLogger(t *testing.T) {
	Debug(true, nil, "msg", nil)
	Info(nil, "msg", nil)
	Warn(nil, "msg", nil)
	Error(nil, "msg", nil)
}
