package pipefunc

import (
	"context"
)

// Logger provides a simple interface for pipeline logging
type Logger interface {
	// Debug logs a message at debug level
	Debug(format string, args ...interface{})

	// Info logs a message at info level
	Info(format string, args ...interface{})

	// Warn logs a message at warning level
	Warn(format string, args ...interface{})

	// Error logs a message at error level
	Error(format string, args ...interface{})
}

// ApplyFunc applies one stage of a pipeline. index is the stage's position in
// the pipeline, starting at 0.
type ApplyFunc func(ctx context.Context, stage *Stage, index int, value any) (any, error)

// Middleware wraps the application of every stage in a pipeline. It can act
// before and after the stage runs, replace the value, or skip the stage.
type Middleware func(next ApplyFunc) ApplyFunc

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// Common log field names used by the built-in middleware.
const (
	// FieldRunID identifies one Run of a pipeline.
	FieldRunID = "run"
	// FieldStage is the stage's representation.
	FieldStage = "stage"
	// FieldIndex is the stage's position in the pipeline.
	FieldIndex = "index"
)
