package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"":      log.InfoLevel,
		"debug": log.DebugLevel,
		"WARN":  log.WarnLevel,
		"error": log.ErrorLevel,
		"bogus": log.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerWithWriter(t *testing.T) {
	t.Setenv("PVMKIT_LOG_LEVEL", "warn")
	t.Setenv("PVMKIT_LOG_PREFIX", "")

	var buf bytes.Buffer
	lg := NewLoggerWithWriter(&buf)
	defer lg.Close()

	lg.Info("hidden")
	lg.Warn("shown", "offset", 6)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "pvmkit") {
		t.Errorf("warn message missing or unprefixed: %q", out)
	}
}

func TestIsDebug(t *testing.T) {
	t.Setenv("PVMKIT_LOG_LEVEL", "debug")
	if !IsDebug() {
		t.Error("IsDebug() = false with PVMKIT_LOG_LEVEL=debug")
	}
	t.Setenv("PVMKIT_LOG_LEVEL", "info")
	if IsDebug() {
		t.Error("IsDebug() = true with PVMKIT_LOG_LEVEL=info")
	}
}
