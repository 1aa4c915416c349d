package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestProviderExportsSpansToLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tp, err := NewProvider(context.Background(), zap.New(core), Config{Enabled: true, Service: "mock-interviewer"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	tracer := tp.Tracer("test")

	_, span := tracer.Start(context.Background(), "interview.start")
	span.SetAttributes(attribute.String("interview.domain", "Technical"))
	span.End()

	_, span = tracer.Start(context.Background(), "interview.submit")
	span.RecordError(errors.New("no active interview session"))
	span.SetStatus(codes.Error, "no active interview session")
	span.End()

	finished := logs.FilterMessage("span finished").All()
	require.Len(t, finished, 1)
	fields := finished[0].ContextMap()
	assert.Equal(t, "interview.start", fields["span"])
	assert.Equal(t, "Technical", fields["interview.domain"])
	assert.NotEmpty(t, fields["trace_id"])

	failed := logs.FilterMessage("span failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.WarnLevel, failed[0].Level)
	assert.Equal(t, "interview.submit", failed[0].ContextMap()["span"])
	assert.Equal(t, "no active interview session", failed[0].ContextMap()["status"])
}

func TestNewProviderRequiresService(t *testing.T) {
	_, err := NewProvider(context.Background(), zap.NewNop(), Config{Enabled: true, Service: "  "})
	require.Error(t, err)
}
