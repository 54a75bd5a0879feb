package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldProduct is the standardized structured logging key for raster product names.
	FieldProduct = "product"
	// FieldVariable is the standardized structured logging key for variable names.
	FieldVariable = "variable"
	// FieldScene is the standardized structured logging key for scene identifiers.
	FieldScene = "scene"
	// FieldRunID is the standardized structured logging key for run identifiers.
	FieldRunID = "run_id"
)

type contextKey string

const (
	productContextKey contextKey = "product"
	sceneContextKey   contextKey = "scene"
	runIDContextKey   contextKey = "run_id"
)

// WithProduct stores the product name on the context.
func WithProduct(ctx context.Context, product string) context.Context {
	return context.WithValue(ctx, productContextKey, product)
}

// WithScene stores the scene identifier on the context.
func WithScene(ctx context.Context, scene string) context.Context {
	return context.WithValue(ctx, sceneContextKey, scene)
}

// WithRunID stores the run identifier on the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDContextKey, runID)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if product, ok := ctx.Value(productContextKey).(string); ok && product != "" {
		fields = append(fields, slog.String(FieldProduct, product))
	}
	if scene, ok := ctx.Value(sceneContextKey).(string); ok && scene != "" {
		fields = append(fields, slog.String(FieldScene, scene))
	}
	if runID, ok := ctx.Value(runIDContextKey).(string); ok && runID != "" {
		fields = append(fields, slog.String(FieldRunID, runID))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
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
