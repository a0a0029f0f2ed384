package logging

import (
	"context"
	"log/slog"

	"photoorg/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for organize run identifiers.
	FieldRunID = "run_id"
	// FieldStage is the standardized structured logging key for run phase names.
	FieldStage = "stage"
	// FieldSourceFile is the standardized structured logging key for the file being processed.
	FieldSourceFile = "file"
	// FieldDecisionType names the kind of routing decision being logged.
	FieldDecisionType = "decision_type"
	// FieldDecisionResult is the outcome of a routing decision.
	FieldDecisionResult = "decision_result"
	// FieldDecisionReason explains the outcome of a routing decision.
	FieldDecisionReason = "decision_reason"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if name, ok := services.SourceFileFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSourceFile, name))
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
