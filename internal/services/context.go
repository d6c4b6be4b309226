package services

import "context"

type contextKey string

const (
	seriesIDKey contextKey = "series_id"
	stageKey    contextKey = "stage"
	runIDKey    contextKey = "run_id"
)

// WithSeriesID annotates context with the DICOM series identifier.
func WithSeriesID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, seriesIDKey, id)
}

// SeriesIDFromContext extracts the series identifier if present.
func SeriesIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(seriesIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the patching stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRunID annotates context with the journal run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the journal run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
