package pipefunc

import (
	"strings"
)

// Pipe feeds v through stages from left to right and returns the final value.
// It is the explicit form of v | f(g) | f(h). The first error stops the
// pipe and is returned unchanged.
func Pipe(v any, stages ...*Stage) (any, error) {
	out := v
	for _, s := range stages {
		var err error
		out, err = s.Apply(out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Pipeline is an ordered list of stages with middleware and logging.
// Pipelines are immutable: Then returns a new pipeline and leaves the
// receiver untouched.
type Pipeline struct {
	// Name is a human-readable name used in logs
	name string
	// stages is the ordered list of stages to apply
	stages []*Stage
	// middleware wraps every stage application
	middleware []Middleware
	// logger used by Run
	logger Logger
}

// WithName sets the pipeline name used in logs.
func WithName(name string) PipelineOption {
	return func(p *Pipeline) {
		p.name = name
	}
}

// WithLogger sets the logger used by Run.
func WithLogger(logger Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMiddleware adds middleware to the pipeline. Middleware runs in the
// order it is added, the first one outermost.
func WithMiddleware(middleware ...Middleware) PipelineOption {
	return func(p *Pipeline) {
		p.middleware = append(p.middleware, middleware...)
	}
}

// WithStages appends stages to the pipeline.
func WithStages(stages ...*Stage) PipelineOption {
	return func(p *Pipeline) {
		p.stages = append(p.stages, stages...)
	}
}

// NewPipeline creates a pipeline with the given options.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		name:   "pipeline",
		logger: NewDefaultLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Then returns a copy of p with stages appended.
func (p *Pipeline) Then(stages ...*Stage) *Pipeline {
	next := p.clone()
	next.stages = append(next.stages, stages...)
	return next
}

// With returns a copy of p with opts applied.
func (p *Pipeline) With(opts ...PipelineOption) *Pipeline {
	next := p.clone()
	for _, opt := range opts {
		opt(next)
	}
	return next
}

func (p *Pipeline) clone() *Pipeline {
	return &Pipeline{
		name:       p.name,
		stages:     append([]*Stage(nil), p.stages...),
		middleware: append([]Middleware(nil), p.middleware...),
		logger:     p.logger,
	}
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.name }

// Stages returns a copy of the pipeline's stages.
func (p *Pipeline) Stages() []*Stage { return append([]*Stage(nil), p.stages...) }

// Len returns the number of stages.
func (p *Pipeline) Len() int { return len(p.stages) }

// String renders the pipeline as its stages joined by " | ".
func (p *Pipeline) String() string {
	parts := make([]string, len(p.stages))
	for i, s := range p.stages {
		parts[i] = s.String()
	}
	return strings.Join(parts, " | ")
}
