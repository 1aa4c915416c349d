package tracing

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/spigell/mock-interviewer/internal/logger"
)

// Config controls span export.
type Config struct {
	Enabled bool   `mapstructure:"enabled"`
	Service string `mapstructure:"service"`
}

// LogExporter writes finished spans to a zap logger. Failed spans are logged
// at warn level, everything else at debug.
type LogExporter struct {
	logger *zap.Logger
}

func NewLogExporter(log *zap.Logger) *LogExporter {
	return &LogExporter{logger: logger.WithFields(log)}
}

// ExportSpans implements sdktrace.SpanExporter. It never fails.
func (e *LogExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		sc := span.SpanContext()
		fields := []zap.Field{
			zap.String("span", span.Name()),
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
			zap.Duration("duration", span.EndTime().Sub(span.StartTime())),
		}
		for _, attr := range span.Attributes() {
			fields = append(fields, zap.String(string(attr.Key), attr.Value.Emit()))
		}

		status := span.Status()
		if status.Code == codes.Error {
			e.logger.Warn("span failed", append(fields, zap.String("status", status.Description))...)
			continue
		}
		e.logger.Debug("span finished", fields...)
	}

	return nil
}

func (e *LogExporter) Shutdown(context.Context) error {
	return nil
}

// NewProvider builds a tracer provider that exports every span synchronously
// through a LogExporter.
func NewProvider(ctx context.Context, log *zap.Logger, cfg Config) (*sdktrace.TracerProvider, error) {
	service := strings.TrimSpace(cfg.Service)
	if service == "" {
		return nil, errors.New("tracing service name is required")
	}

	res, err := resource.New(ctx, resource.WithAttributes(attribute.String("service.name", service)))
	if err != nil {
		logger.WithFields(log).Warn("building trace resource, using default", zap.Error(err))
		res = resource.Default()
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(NewLogExporter(log))),
		sdktrace.WithResource(res),
	), nil
}
