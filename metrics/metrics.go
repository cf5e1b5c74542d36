// Package metrics records stage applications as Prometheus metrics.
package metrics

import (
	"context"
	"time"

	"github.com/davidroman0O/pipefunc"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Recorder holds the collectors updated by its middleware.
type Recorder struct {
	applications *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// New creates a Recorder and registers its collectors with reg.
func New(reg prometheus.Registerer, namespace string) (*Recorder, error) {
	r := &Recorder{
		applications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_applications_total",
			Help:      "Number of stage applications by stage and outcome.",
		}, []string{"stage", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_apply_duration_seconds",
			Help:      "Time spent applying a stage.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"stage"}),
	}

	for _, c := range []prometheus.Collector{r.applications, r.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Middleware returns a pipeline middleware that updates the recorder.
// Stages are labelled with their representation.
func (r *Recorder) Middleware() pipefunc.Middleware {
	return func(next pipefunc.ApplyFunc) pipefunc.ApplyFunc {
		return func(ctx context.Context, s *pipefunc.Stage, index int, v any) (any, error) {
			label := s.String()
			start := time.Now()
			out, err := next(ctx, s, index, v)
			r.duration.WithLabelValues(label).Observe(time.Since(start).Seconds())

			outcome := OutcomeSuccess
			if err != nil {
				outcome = OutcomeError
			}
			r.applications.WithLabelValues(label, outcome).Inc()
			return out, err
		}
	}
}
