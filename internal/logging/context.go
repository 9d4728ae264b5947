package logging

import (
	"context"
	"log/slog"

	"lookout/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldGenerator is the standardized structured logging key for generator names.
	FieldGenerator = "generator"
	// FieldRefiner is the standardized structured logging key for refiner names.
	FieldRefiner = "refiner"
	// FieldPassID is the standardized structured logging key for generation-pass identifiers.
	FieldPassID = "pass_id"
	// FieldChunk is the standardized structured logging key for audio chunk file names.
	FieldChunk = "chunk"
	// FieldEventType tags machine-scannable event categories on log lines.
	FieldEventType = "event_type"
	// FieldErrorHint carries a suggested operator next step on warn/error lines.
	FieldErrorHint = "error_hint"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if pass, ok := services.PassIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldPassID, pass))
	}
	if generator, ok := services.GeneratorFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldGenerator, generator))
	}
	if refiner, ok := services.RefinerFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRefiner, refiner))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
