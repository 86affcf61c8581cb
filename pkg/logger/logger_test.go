package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/abgdnv/storefront/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHandler_AddsRequestID(t *testing.T) {
	// given
	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil))).With("component", "test")
	ctx := web.WithRequestID(context.Background(), "req-42")

	// when
	log.InfoContext(ctx, "hello")

	// then
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "req-42", record["request_id"])
	assert.Equal(t, "test", record["component"])
	assert.NotContains(t, record, "trace_id")
}

func TestContextHandler_NoContextValues(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	log.Info("plain")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.NotContains(t, record, "request_id")
}
