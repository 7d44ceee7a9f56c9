package internal

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"trace":   LevelTrace,
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"fatal":   LevelFatal,
		"off":     Disable,
	}
	for in, want := range cases {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	got, err := ParseLogLevel("nonsense")
	assert.Error(t, err)
	assert.Equal(t, LevelInfo, got, "unknown levels fall back to info")
}

func TestFormatLogLevel(t *testing.T) {
	assert.Equal(t, "TRACE", FormatLogLevel(LevelTrace))
	assert.Equal(t, "DEBUG", FormatLogLevel(LevelDebug))
	assert.Equal(t, "INFO", FormatLogLevel(LevelInfo))
	assert.Equal(t, "WARN", FormatLogLevel(LevelWarn))
	assert.Equal(t, "ERROR", FormatLogLevel(LevelError))
	assert.Equal(t, "FATAL", FormatLogLevel(LevelFatal))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelTrace)

	logger.Log(t.Context(), LevelTrace, "tracing along")
	logger.Info("hello", "key", "value")

	out := buf.String()
	assert.Contains(t, out, "TRACE")
	assert.Contains(t, out, "tracing along")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "key=value")
}

func TestNoOpLogger(t *testing.T) {
	logger := NoOpLogger()
	logger.Error("this goes nowhere")
}
