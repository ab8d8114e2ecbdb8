package dotlayer

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/dotlayer/collection"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for dotlayer and its sub-packages.
// By default, dotlayer produces no log output. Pass nil to restore the
// silent default.
//
// Log levels used by dotlayer:
//   - [slog.LevelDebug]: per-redraw diagnostics (viewport changes, draw counts)
//   - [slog.LevelInfo]: lifecycle events (attach, detach, reset)
//   - [slog.LevelWarn]: recoverable failures in event handlers
//
// Example:
//
//	dotlayer.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	collection.SetLogger(l)
}

// Logger returns the current logger used by dotlayer.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
