package bootstrap

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToLevel(t *testing.T) {
	testCases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for in, expected := range testCases {
		assert.Equal(t, expected, ToLevel(in), "level %q", in)
	}
}

func TestNewLoggerTo_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, "warn")

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
	assert.False(t, log.Enabled(context.Background(), slog.LevelInfo))
}
