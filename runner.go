package pipefunc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type runIDKey struct{}

// RunID returns the identifier of the Run that ctx belongs to, or "" outside
// of a run.
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// Run applies the pipeline's stages to v in order through the middleware
// chain. A failing stage stops the run; its error is returned inside a
// *StageError. Cancellation of ctx is checked between stages.
func (p *Pipeline) Run(ctx context.Context, v any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runID := uuid.NewString()
	ctx = context.WithValue(ctx, runIDKey{}, runID)

	// Build the middleware chain
	var handler ApplyFunc = applyStage

	// Apply middleware in reverse order
	for i := len(p.middleware) - 1; i >= 0; i-- {
		handler = p.middleware[i](handler)
	}

	p.logger.Debug("Starting pipeline %s (%s=%s) with %d stages", p.name, FieldRunID, runID, len(p.stages))

	out := v
	for i, s := range p.stages {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("Pipeline %s cancelled before stage %d: %v", p.name, i, err)
			return nil, err
		}
		next, err := handler(ctx, s, i, out)
		if err != nil {
			p.logger.Error("Pipeline %s failed at stage %d %s: %v", p.name, i, s, err)
			return nil, &StageError{Index: i, Stage: s, Err: err}
		}
		out = next
	}

	p.logger.Debug("Pipeline %s completed (%s=%s)", p.name, FieldRunID, runID)
	return out, nil
}

// applyStage is the innermost ApplyFunc.
func applyStage(_ context.Context, s *Stage, _ int, v any) (any, error) {
	return s.Apply(v)
}

// LoggingMiddleware creates a middleware that logs every stage application
func LoggingMiddleware(logger Logger) Middleware {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return func(next ApplyFunc) ApplyFunc {
		return func(ctx context.Context, s *Stage, index int, v any) (any, error) {
			logger.Debug("Applying %s=%d %s=%s %s=%s", FieldIndex, index, FieldStage, s, FieldRunID, RunID(ctx))

			start := time.Now()
			out, err := next(ctx, s, index, v)
			duration := time.Since(start)

			if err != nil {
				logger.Error("Stage %d %s failed after %v: %v", index, s, duration, err)
			} else {
				logger.Debug("Stage %d %s completed in %v", index, s, duration)
			}
			return out, err
		}
	}
}

// RecoverMiddleware converts a panic raised while applying a stage into an error.
func RecoverMiddleware() Middleware {
	return func(next ApplyFunc) ApplyFunc {
		return func(ctx context.Context, s *Stage, index int, v any) (out any, err error) {
			defer func() {
				if r := recover(); r != nil {
					out = nil
					err = fmt.Errorf("panic in stage %s: %v", s, r)
				}
			}()
			return next(ctx, s, index, v)
		}
	}
}

// TimeLimitMiddleware fails a stage application that takes longer than limit.
// The stage itself is not interrupted.
func TimeLimitMiddleware(limit time.Duration) Middleware {
	return func(next ApplyFunc) ApplyFunc {
		return func(parent context.Context, s *Stage, index int, v any) (any, error) {
			ctx, cancel := context.WithTimeout(parent, limit)
			defer cancel()
			out, err := next(ctx, s, index, v)
			// cancellation of parent is left to Run
			if err == nil && parent.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("stage %s exceeded %v: %w", s, limit, ctx.Err())
			}
			return out, err
		}
	}
}
