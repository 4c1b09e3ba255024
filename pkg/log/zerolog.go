package log

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/YuminosukeSato/wot/pkg/errors"
	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger on top of zerolog.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger creates a JSON logger writing to w at the given minimum level.
func NewZerologLogger(w io.Writer, level Level) *ZerologLogger {
	return &ZerologLogger{
		logger: zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger(),
	}
}

// Debug implements Logger.Debug.
func (z *ZerologLogger) Debug(msg string, fields ...any) {
	emit(z.logger.Debug(), msg, fields)
}

// Info implements Logger.Info.
func (z *ZerologLogger) Info(msg string, fields ...any) {
	emit(z.logger.Info(), msg, fields)
}

// Warn implements Logger.Warn.
func (z *ZerologLogger) Warn(msg string, fields ...any) {
	emit(z.logger.Warn(), msg, fields)
}

// Error implements Logger.Error.
func (z *ZerologLogger) Error(msg string, fields ...any) {
	emit(z.logger.Error(), msg, fields)
}

// With implements Logger.With.
func (z *ZerologLogger) With(fields ...any) Logger {
	return &ZerologLogger{logger: z.logger.With().Fields(fields).Logger()}
}

// Enabled implements Logger.Enabled.
func (z *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return z.logger.GetLevel() <= toZerologLevel(level)
}

// emit writes one event. A disabled level yields a nil event, which zerolog
// treats as a no-op.
func emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			e = e.AnErr(ErrorKey, err)
			if st := errors.Stacktrace(err); st != "" {
				e = e.Str(StacktraceKey, st)
			}
			fields = fields[1:]
		}
	}
	if len(fields) > 0 {
		e = e.Fields(fields)
	}
	e.Msg(msg)
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ParseLevel converts "debug", "info", "warn" or "error" into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.NewValidationError("logging.level", "unknown log level", s)
	}
}

// ZerologProvider hands out zerolog-backed loggers sharing one output.
// Loggers keep the level that was current when they were created.
type ZerologProvider struct {
	mu    sync.RWMutex
	out   io.Writer
	level Level
}

// NewZerologProvider creates a provider writing to w.
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	return &ZerologProvider{out: w, level: level}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return NewZerologLogger(p.out, p.level)
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
}

// SetOutput redirects loggers created after the call.
func (p *ZerologProvider) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out = w
}

func (p *ZerologProvider) warn(w error) {
	p.mu.RLock()
	logger := zerolog.New(p.out).With().Timestamp().Logger()
	p.mu.RUnlock()

	e := logger.Warn()
	if m, ok := w.(zerolog.LogObjectMarshaler); ok {
		e = e.EmbedObject(m)
	}
	e.Msg(w.Error())
}

var defaultProvider = NewZerologProvider(os.Stderr, LevelInfo)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	errors.SetZerologWarnFunc(defaultProvider.warn)
}

// GetLogger returns a logger from the package-level provider.
func GetLogger() Logger {
	return defaultProvider.GetLogger()
}

// GetLoggerWithName returns a named logger from the package-level provider.
func GetLoggerWithName(name string) Logger {
	return defaultProvider.GetLoggerWithName(name)
}

// SetLevel sets the minimum level of the package-level provider.
func SetLevel(level Level) {
	defaultProvider.SetLevel(level)
}

// SetOutput redirects the package-level provider, warnings included.
func SetOutput(w io.Writer) {
	defaultProvider.SetOutput(w)
}
