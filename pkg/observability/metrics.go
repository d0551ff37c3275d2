package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/civicflow/pkg/domain"
)

// Metrics holds the civicflow collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	StepRuns     *prometheus.CounterVec
	StepDuration *prometheus.HistogramVec
	FlowRuns     *prometheus.CounterVec
	FlowDuration *prometheus.HistogramVec
	FlowSteps    prometheus.Histogram
}

// NewMetrics creates the collectors in a fresh registry, together with the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StepRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "civicflow_step_runs_total",
				Help: "Step invocations by step and result.",
			},
			[]string{"step", "result"},
		),
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "civicflow_step_duration_seconds",
				Help:    "Duration of step invocations.",
				Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"step"},
		),
		FlowRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "civicflow_flow_runs_total",
				Help: "Flow executions by start step and result.",
			},
			[]string{"start", "result"},
		),
		FlowDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "civicflow_flow_duration_seconds",
				Help:    "Duration of flow executions.",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"start"},
		),
		FlowSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "civicflow_flow_path_length",
			Help:    "Number of steps executed per flow.",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
	}
	m.registry.MustRegister(
		m.StepRuns, m.StepDuration, m.FlowRuns, m.FlowDuration, m.FlowSteps,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			m.StepRuns.WithLabelValues(e.Step, Result(e.Err)).Inc()
			m.StepDuration.WithLabelValues(e.Step).Observe(e.Duration.Seconds())
		},
		OnFlowEnd: func(ctx context.Context, e *domain.FlowEvent) {
			m.FlowRuns.WithLabelValues(e.Start, Result(e.Err)).Inc()
			m.FlowDuration.WithLabelValues(e.Start).Observe(e.Duration.Seconds())
			m.FlowSteps.Observe(float64(len(e.Path)))
		},
	}
}

// Result classifies err into a low-cardinality metric label.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrTimeout), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	case errors.Is(err, domain.ErrLoopLimit):
		return "loop_limit"
	case errors.Is(err, domain.ErrConfiguration), errors.Is(err, domain.ErrUnknownStep):
		return "configuration"
	}
	return "error"
}
