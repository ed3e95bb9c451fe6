package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerSilentByDefault(t *testing.T) {
	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger should not be enabled at any level")
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	Logger().Warn("draw degraded", "batch", "sprites")
	if got := buf.String(); !strings.Contains(got, "draw degraded") || !strings.Contains(got, "batch=sprites") {
		t.Errorf("Logger() output = %q, want message and attribute", got)
	}

	SetLogger(nil)
	buf.Reset()
	Logger().Error("ignored")
	if buf.Len() != 0 {
		t.Errorf("Logger() after SetLogger(nil) wrote %q, want nothing", buf.String())
	}
}
