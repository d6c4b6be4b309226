package logging

import (
	"context"
	"log/slog"

	"bidspatch/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSeriesID is the standardized structured logging key for DICOM series identifiers.
	FieldSeriesID = "series_id"
	// FieldStage is the standardized structured logging key for patching stage names.
	FieldStage = "stage"
	// FieldRunID is the standardized structured logging key for journal run identifiers.
	FieldRunID = "run_id"
	// FieldFile is the standardized structured logging key for filenames being patched.
	FieldFile = "file"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.SeriesIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSeriesID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
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
