package wtvr3d

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that discards all records. Enabled returns
// false so callers skip message formatting entirely when logging is off.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Stored atomically so SetLogger may be
// called while the host is ticking frames.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger shared by the engine packages. By default
// the engine produces no log output; call SetLogger to enable it. Pass nil
// to restore the silent default.
//
// Log levels used by the engine:
//   - [slog.LevelWarn]: recovered per-frame issues (unresolved uniform or
//     attribute locations)
//   - [slog.LevelError]: skipped draw work (a mesh entity referencing an
//     unregistered asset)
//
// Systems that log (renderer, asset registry) also accept a WithLogger
// builder option; the option takes precedence over this shared logger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the logger shared by the engine packages.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
