package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestShouldLog(t *testing.T) {
	tests := []struct {
		name        string
		configLevel string
		logLevel    string
		shouldLog   bool
	}{
		{"debug logs at debug level", "debug", "debug", true},
		{"info logs at debug level", "debug", "info", true},
		{"debug doesn't log at info level", "info", "debug", false},
		{"warn logs at info level", "info", "warn", true},
		{"info doesn't log at error level", "error", "info", false},
		{"unknown config level defaults to info", "loud", "debug", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.configLevel).(*implLogger)
			if got := log.shouldLog(tt.logLevel); got != tt.shouldLog {
				t.Errorf("shouldLog() = %v, want %v", got, tt.shouldLog)
			}
		})
	}
}

func TestRequestIDPrefix(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	ctx := WithRequestID(context.Background(), "abc123")
	log.Info(ctx, "analyzed %s", "notes.txt")
	log.Debug(ctx, "hidden")

	out := buf.String()
	if !strings.Contains(out, "[INFO] [req=abc123] analyzed notes.txt") {
		t.Fatalf("unexpected log line: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered at info level: %q", out)
	}
}

func TestRequestIDMissing(t *testing.T) {
	if id := RequestID(context.Background()); id != "" {
		t.Fatalf("RequestID() = %q, want empty", id)
	}
}
