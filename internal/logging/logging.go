// Package logging holds the structured logger shared by pixmark's library
// packages. By default nothing is logged.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger used by gallery, surface and render.
// Pass nil to restore silent behavior. Safe for concurrent use.
//
// Levels:
//   - [slog.LevelDebug]: request URLs, canvas sizes, discarded callbacks
//   - [slog.LevelInfo]: scene open/close, exports
//   - [slog.LevelWarn]: failed background loads
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. It is never nil.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
