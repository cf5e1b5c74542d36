package pipefunc

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultLogger is a no-op logger implementation
type DefaultLogger struct{}

// Debug implements Logger.Debug
func (l *DefaultLogger) Debug(format string, args ...interface{}) {}

// Info implements Logger.Info
func (l *DefaultLogger) Info(format string, args ...interface{}) {}

// Warn implements Logger.Warn
func (l *DefaultLogger) Warn(format string, args ...interface{}) {}

// Error implements Logger.Error
func (l *DefaultLogger) Error(format string, args ...interface{}) {}

// NewDefaultLogger creates a new default no-op logger
func NewDefaultLogger() Logger {
	return &DefaultLogger{}
}

// SlogLogger adapts a *slog.Logger to Logger. Messages are formatted with
// fmt.Sprintf before being handed to slog.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps l. A nil l uses slog.Default().
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{l: l}
}

func (s *SlogLogger) log(level slog.Level, format string, args []interface{}) {
	ctx := context.Background()
	if !s.l.Enabled(ctx, level) {
		return
	}
	s.l.Log(ctx, level, fmt.Sprintf(format, args...))
}

// Debug implements Logger.Debug
func (s *SlogLogger) Debug(format string, args ...interface{}) { s.log(slog.LevelDebug, format, args) }

// Info implements Logger.Info
func (s *SlogLogger) Info(format string, args ...interface{}) { s.log(slog.LevelInfo, format, args) }

// Warn implements Logger.Warn
func (s *SlogLogger) Warn(format string, args ...interface{}) { s.log(slog.LevelWarn, format, args) }

// Error implements Logger.Error
func (s *SlogLogger) Error(format string, args ...interface{}) { s.log(slog.LevelError, format, args) }
