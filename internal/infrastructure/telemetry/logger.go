package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SetupLogger builds the process-wide structured logger. Development
// environments get console encoding, everything else JSON.
func SetupLogger(level, environment string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if environment == "development" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// WithTrace returns the logger annotated with the span identifiers from the
// context, when a recording span is present.
func WithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	span := trace.SpanFromContext(ctx)
	sc := span.SpanContext()
	if !sc.IsValid() {
		return logger
	}
	fields := []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
	if sc.IsSampled() {
		fields = append(fields, zap.Bool("sampled", true))
	}
	return logger.With(fields...)
}
