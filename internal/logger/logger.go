// Package logger provides leveled, structured logging for the
// owncloud-client application on top of log/slog.
package logger

import (
	"fmt"
	"log/slog"
	"os"
)

// Logger is the logging interface used throughout the application. Plain
// methods take structured key/value attributes; the *f variants format.
type Logger interface {
	Debug(msg string, args ...any)
	Debugf(format string, args ...any)
	Info(msg string, args ...any)
	Infof(format string, args ...any)
	Warn(msg string, args ...any)
	Warnf(format string, args ...any)
	Error(msg string, args ...any)
	Errorf(format string, args ...any)
}

// NoopLogger discards everything. Useful in tests.
type NoopLogger struct{}

func (l NoopLogger) Debug(msg string, args ...any)     {}
func (l NoopLogger) Debugf(format string, args ...any) {}
func (l NoopLogger) Info(msg string, args ...any)      {}
func (l NoopLogger) Infof(format string, args ...any)  {}
func (l NoopLogger) Warn(msg string, args ...any)      {}
func (l NoopLogger) Warnf(format string, args ...any)  {}
func (l NoopLogger) Error(msg string, args ...any)     {}
func (l NoopLogger) Errorf(format string, args ...any) {}

// SlogLogger implements Logger on an slog.Logger writing text to stderr.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a logger filtering below the given level.
func NewSlogLogger(level slog.Level) *SlogLogger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &SlogLogger{logger: slog.New(handler)}
}

// NewDefaultLogger returns a Debug-level logger when debug is set,
// otherwise Info-level.
func NewDefaultLogger(debug bool) Logger {
	if debug {
		return NewSlogLogger(slog.LevelDebug)
	}
	return NewSlogLogger(slog.LevelInfo)
}

func (l *SlogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *SlogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *SlogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *SlogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l *SlogLogger) Debugf(format string, args ...any) { l.logger.Debug(sprintf(format, args...)) }
func (l *SlogLogger) Infof(format string, args ...any)  { l.logger.Info(sprintf(format, args...)) }
func (l *SlogLogger) Warnf(format string, args ...any)  { l.logger.Warn(sprintf(format, args...)) }
func (l *SlogLogger) Errorf(format string, args ...any) { l.logger.Error(sprintf(format, args...)) }

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
