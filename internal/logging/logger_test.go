package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew_SilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")

	logger, err := New("")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected silent logger when no level is configured")
	}
}

func TestNew_FromEnv(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "warn")

	logger, err := New("")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled")
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
	l := zap.NewExample()
	if OrNop(l) != l {
		t.Error("OrNop should return the given logger")
	}
}

func TestLogRawBytes(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	LogRawBytes(zap.New(core), "datagram", []byte("NOTIFY\r\n"), zap.String("from", "10.0.0.2:1900"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["ascii"] != "NOTIFY.." {
		t.Errorf("ascii = %v, want NOTIFY..", ctx["ascii"])
	}
	if ctx["length"] != int64(8) {
		t.Errorf("length = %v, want 8", ctx["length"])
	}
	if ctx["from"] != "10.0.0.2:1900" {
		t.Errorf("from = %v", ctx["from"])
	}

	// Disabled level and nil logger are no-ops
	quiet, quietLogs := observer.New(zapcore.InfoLevel)
	LogRawBytes(zap.New(quiet), "datagram", []byte("x"))
	if quietLogs.Len() != 0 {
		t.Error("expected nothing logged above debug")
	}
	LogRawBytes(nil, "datagram", []byte("x"))
}

func TestHexDump_Truncates(t *testing.T) {
	data := make([]byte, 300)
	got := hexDump(data)
	if !strings.HasSuffix(got, "...") {
		t.Error("expected truncation marker")
	}
	if len(got) != 512+3 {
		t.Errorf("len = %d, want %d", len(got), 515)
	}
	if hexDump(nil) != "" || asciiDump(nil) != "" {
		t.Error("empty input should produce empty dumps")
	}
}
