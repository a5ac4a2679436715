package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLoggerWritesOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("snapshot loaded", Int("entities", 10))
	logger.Warn("skipping malformed record", Line(3))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}

	var entry LogEntry
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("first line is not JSON: %v", err)
	}
	if entry.Level != "INFO" || entry.Message != "snapshot loaded" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Fields["entities"] != float64(10) {
		t.Errorf("entities field = %v", entry.Fields["entities"])
	}
}

func TestJSONLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("hidden")
	logger.Info("also hidden")
	logger.Error("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("below-level messages were written")
	}
	if !strings.Contains(out, "visible") {
		t.Error("error message missing")
	}
}

func TestWithFieldsInherited(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Component("api"))
	child.Info("request", String("method", "GET"))

	var entry LogEntry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if entry.Fields["component"] != "api" {
		t.Errorf("inherited field missing: %v", entry.Fields)
	}
	if entry.Fields["method"] != "GET" {
		t.Errorf("call-site field missing: %v", entry.Fields)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"nonsense", InfoLevel},
		{"", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	// Must not panic, and With must chain
	logger.With(String("k", "v")).Info("discarded")
}
