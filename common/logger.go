package common

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. It is the default so that library packages stay silent
// until the application installs a logger.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(nopHandler{}))
}

// SetLogger installs the logger used by every engine package.
// Passing nil restores the silent default.
//
// Parameters:
//   - l: the logger to install
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	logger.Store(l)
}

// Logger returns the logger installed with SetLogger.
//
// Returns:
//   - *slog.Logger: the current engine logger, never nil
func Logger() *slog.Logger {
	return logger.Load()
}

// ParseLevel maps a config level name to a slog.Level. Unknown names map to Info.
//
// Parameters:
//   - name: one of "debug", "info", "warn", "error"
//
// Returns:
//   - slog.Level: the matching level
func ParseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
