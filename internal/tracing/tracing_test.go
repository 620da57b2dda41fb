package tracing

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "waingest", cfg.ServiceName)
	assert.False(t, cfg.Enabled)
	assert.True(t, cfg.UseStdout)
	assert.InDelta(t, 0.1, cfg.SampleRate, 0.001)
}

func TestManagerDisabled(t *testing.T) {
	m := NewManager(Config{Enabled: false}, logrus.New())
	require.NoError(t, m.Initialize(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))
}

func TestManagerStdoutExporter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.UseStdout = true
	cfg.SampleRate = 0

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	m := NewManager(cfg, logger)
	require.NoError(t, m.Initialize(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))
}

func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test.operation",
		attribute.String("message.type", "chat"))
	defer span.End()

	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
}

func TestRecordErrorWithoutSpan(t *testing.T) {
	// Must not panic when no span is recording on the context.
	RecordError(context.Background(), errors.New("boom"))
}

func TestTraceIDWithoutSpan(t *testing.T) {
	id := TraceID(context.Background())
	assert.Equal(t, "00000000000000000000000000000000", id)
}
