package otel

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regapi/internal/logging"
)

func TestNewSampler(t *testing.T) {
	tests := []struct {
		name     string
		sampler  string
		arg      string
		contains string
	}{
		{"always on", "always_on", "", "AlwaysOnSampler"},
		{"always off", "always_off", "", "AlwaysOffSampler"},
		{"ratio", "traceidratio", "0.25", "TraceIDRatioBased{0.25}"},
		{"parent ratio", "parentbased_traceidratio", "0.5", "TraceIDRatioBased{0.5}"},
		{"bad ratio falls back to 1", "traceidratio", "abc", "AlwaysOnSampler"},
		{"out of range ratio falls back to 1", "traceidratio", "7", "AlwaysOnSampler"},
		{"unknown", "whatever", "", "ParentBased{root:AlwaysOnSampler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newSampler(tt.sampler, tt.arg)
			assert.Contains(t, got.Description(), tt.contains)
		})
	}
}

func TestInit_Disabled(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "true")

	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), logging.New(&buf, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tracing_configured", entry["msg"])
	assert.Equal(t, false, entry["tracing_enabled"])
}

func TestInit_UnsupportedProtocolDegrades(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "false")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "carrier-pigeon")

	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), logging.New(&buf, time.UTC))
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tracing_init_failed", entry["msg"])
	assert.Equal(t, "error", entry["level"])
}
