package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"WARNING", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		level, err := ParseLogLevel(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, level, tt.input)
	}

	_, err := ParseLogLevel("chatty")
	assert.Error(t, err)
}

func TestNewLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, closeLog, err := NewLogger(LoggerConfig{Level: "warn", Output: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	closeLog()

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyreader.log")
	logger, closeLog, err := NewLogger(LoggerConfig{Level: "debug", File: path, JSON: true})
	require.NoError(t, err)

	logger.Debug("to file")
	closeLog()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
}

func TestNewLoggerBadLevel(t *testing.T) {
	_, _, err := NewLogger(LoggerConfig{Level: "chatty"})
	assert.Error(t, err)
}
