// Package log provides the structured logging interface used by the solver
// and the parameter search.
//
// The interface is slog-compatible so the backend can be swapped; the
// default backend is zerolog (see zerolog.go). Attribute keys shared by
// every component live in attributes.go.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("ot.search").With(
//	    log.SourcesKey, 300,
//	    log.TargetsKey, 280,
//	)
//	logger.Info("Coupling accepted",
//	    log.EpsilonKey, 0.121,
//	    log.AvgTransportKey, 41.7,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key/value pairs. If the first field passed to
// Error is an error value it is recorded under the "error" key together
// with its stack trace.
type Logger interface {
	// Debug logs detailed diagnostic information, such as one line per
	// solver call.
	Debug(msg string, fields ...any)

	// Info logs general operational information.
	Info(msg string, fields ...any)

	// Warn logs potentially problematic situations that do not stop
	// the computation.
	Warn(msg string, fields ...any)

	// Error logs error conditions.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	// Use it to skip computing expensive diagnostics.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
