package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogLevel_Constants(t *testing.T) {
	// Ensure log levels have correct ordering
	assert.Equal(t, 0, int(DEBUG))
	assert.Equal(t, 1, int(INFO))
	assert.Equal(t, 2, int(WARN))
	assert.Equal(t, 3, int(ERROR))

	// Verify ordering for filtering
	assert.True(t, DEBUG < INFO)
	assert.True(t, INFO < WARN)
	assert.True(t, WARN < ERROR)
}

func newObserved(level LogLevel) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewWithCore(level, core), logs
}

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		level LogLevel
	}{
		{"debug logger", DEBUG},
		{"info logger", INFO},
		{"warn logger", WARN},
		{"error logger", ERROR},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level)
			assert.NotNil(t, logger)
			assert.Equal(t, tt.level, logger.level)
			assert.NotNil(t, logger.zl)
		})
	}
}

func TestLogger_SetLevel(t *testing.T) {
	originalLevel := defaultLogger.level
	defer func() {
		defaultLogger.level = originalLevel
	}()

	SetLevel(DEBUG)
	assert.Equal(t, DEBUG, defaultLogger.level)

	SetLevel(ERROR)
	assert.Equal(t, ERROR, defaultLogger.level)
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, logs := newObserved(WARN)

	// Test that only messages at or above the level are logged
	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "warn message", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "error message", entries[1].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestLogger_MessageFormatting(t *testing.T) {
	logger, logs := newObserved(DEBUG)

	logger.Info("test message")
	logger.Error("error %d: %s", 404, "not found")
	logger.Warn("100%% complete")

	entries := logs.All()
	assert.Len(t, entries, 3)
	assert.Equal(t, "test message", entries[0].Message)
	assert.Equal(t, "error 404: not found", entries[1].Message)
	assert.Equal(t, "100% complete", entries[2].Message)
}

func TestGlobalFunctions(t *testing.T) {
	logger, logs := newObserved(DEBUG)
	prev := SetDefault(logger)
	defer SetDefault(prev)

	Debug("debug test %d", 1)
	Info("info test %d", 2)
	Warn("warn test %d", 3)
	Error("error test %d", 4)

	entries := logs.All()
	assert.Len(t, entries, 4)
	assert.Equal(t, "debug test 1", entries[0].Message)
	assert.Equal(t, "info test 2", entries[1].Message)
	assert.Equal(t, "warn test 3", entries[2].Message)
	assert.Equal(t, "error test 4", entries[3].Message)
}

func TestGlobalFunctions_WithFiltering(t *testing.T) {
	logger, logs := newObserved(WARN)
	prev := SetDefault(logger)
	defer SetDefault(prev)

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "warn message", entries[0].Message)
	assert.Equal(t, "error message", entries[1].Message)
}

func TestLogger_ConcurrentAccess(t *testing.T) {
	logger, logs := newObserved(INFO)

	done := make(chan bool, 10)

	// Start multiple goroutines logging concurrently
	for i := 0; i < 10; i++ {
		go func(id int) {
			logger.Info("concurrent message %d", id)
			done <- true
		}(i)
	}

	// Wait for all to complete
	for i := 0; i < 10; i++ {
		<-done
	}

	assert.Equal(t, 10, logs.Len())
}

func TestDefaultLogger_Initialization(t *testing.T) {
	assert.NotNil(t, defaultLogger)
	assert.Equal(t, INFO, defaultLogger.level)
	assert.NotNil(t, defaultLogger.zl)
}
