// Package logger holds the structured logger shared by every engine package.
// Engine code never writes to stdout directly; it reports through Logger(), which is silent
// until the application installs a logger with SetLogger.
package logger

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that discards all records. Enabled returns false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger installs the logger used by the engine and all of its sub-packages.
// Passing nil restores the default silent logger. Safe for concurrent use.
//
// Levels used by the engine:
//   - slog.LevelDebug: batch creation, buffer growth, pipeline creation
//   - slog.LevelInfo: lifecycle events (adapter selected, textures loaded, frame statistics)
//   - slog.LevelWarn: degraded draws that still go ahead (empty buffers)
//   - slog.LevelError: draws that are skipped (missing shader, exhausted texture slots, backend errors)
//
// Parameters:
//   - l: the logger to install, or nil to disable logging
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the logger currently installed with SetLogger.
//
// Returns:
//   - *slog.Logger: the active logger, never nil
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
