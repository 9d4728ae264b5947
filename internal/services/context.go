package services

import "context"

type contextKey string

const (
	passIDKey    contextKey = "pass_id"
	generatorKey contextKey = "generator"
	refinerKey   contextKey = "refiner"
)

// WithPassID annotates context with the generation-pass correlation identifier.
func WithPassID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, passIDKey, id)
}

// PassIDFromContext extracts the generation-pass identifier if present.
func PassIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(passIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithGenerator annotates context with the active generator name.
func WithGenerator(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, generatorKey, name)
}

// GeneratorFromContext returns the generator name if present.
func GeneratorFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(generatorKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRefiner annotates context with the active refiner name.
func WithRefiner(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, refinerKey, name)
}

// RefinerFromContext returns the refiner name if present.
func RefinerFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(refinerKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
