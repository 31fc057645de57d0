package logging

import (
	"context"
	"log/slog"

	"unmix/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldJobID is the standardized structured logging key for job identifiers.
	FieldJobID = "job_id"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldStem is the standardized structured logging key for stem names (vocals, accompaniment).
	FieldStem = "stem"
	// FieldModel is the standardized structured logging key for separation model names.
	FieldModel = "model"
	// FieldDevice is the standardized structured logging key for compute device names.
	FieldDevice = "device"
	// FieldPercent is the standardized structured logging key for progress percentages.
	FieldPercent = "percent"
	// FieldPath is the standardized structured logging key for filesystem paths.
	FieldPath = "path"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := services.JobIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldJobID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
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
