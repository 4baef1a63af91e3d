package logger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultLogger(t *testing.T) {
	debugLogger := NewDefaultLogger(true)
	assert.NotNil(t, debugLogger)
	assert.IsType(t, &SlogLogger{}, debugLogger)

	infoLogger := NewDefaultLogger(false)
	assert.NotNil(t, infoLogger)
}

func TestSlogLoggerDoesNotPanic(t *testing.T) {
	l := NewSlogLogger(slog.LevelDebug)

	l.Debug("debug message", "key", "value")
	l.Info("info message")
	l.Warn("warn message", "count", 3)
	l.Error("error message")

	l.Debugf("formatted %s", "debug")
	l.Infof("formatted %d", 1)
	l.Warnf("no args")
	l.Errorf("value: %v", []int{1, 2})
}

func TestNoopLoggerDoesNothing(t *testing.T) {
	var l Logger = NoopLogger{}

	l.Debug("ignored")
	l.Infof("ignored %d", 1)
	l.Warn("ignored")
	l.Errorf("ignored")
}

func TestSprintf(t *testing.T) {
	assert.Equal(t, "plain", sprintf("plain"))
	assert.Equal(t, "x=1", sprintf("x=%d", 1))
}
