package ggame

import (
	"log/slog"

	"github.com/gogpu/ggame/internal/logging"
)

// SetLogger configures the logger for ggame and all its sub-packages.
// By default, ggame produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by ggame:
//   - [slog.LevelDebug]: per-frame diagnostics (batches, draw calls, dropped lag)
//   - [slog.LevelInfo]: lifecycle events (backend opened, engine state changes)
//   - [slog.LevelWarn]: non-fatal issues (lag dropped, leaked device resources)
//   - [slog.LevelError]: fatal backend failures
//
// Example:
//
//	ggame.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by ggame.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
