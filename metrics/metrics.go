// Package metrics holds the Prometheus collectors shared by the pipeline,
// the fetcher and the HTTP server. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ghostwriter"

// Outcome label values.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
	OutcomeEmpty   = "empty"
)

type Metrics struct {
	ModelInvocations *prometheus.CounterVec
	PromptTokens     *prometheus.CounterVec
	Fetches          *prometheus.CounterVec
	PipelineRuns     *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
}

// New builds the collectors and registers them on reg when reg is non-nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ModelInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_invocations_total",
			Help:      "Model invocations by tier and outcome.",
		}, []string{"tier", "outcome"}),
		PromptTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prompt_tokens_total",
			Help:      "Estimated prompt tokens sent per tier.",
		}, []string{"tier"}),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Source page fetches by outcome.",
		}, []string{"outcome"}),
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Completed pipeline runs by outcome.",
		}, []string{"outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent in each pipeline stage.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"stage"}),
	}
	if reg != nil {
		reg.MustRegister(m.ModelInvocations, m.PromptTokens, m.Fetches, m.PipelineRuns, m.StageDuration)
	}
	return m
}

func (m *Metrics) ObserveInvocation(tier, outcome string) {
	if m == nil {
		return
	}
	m.ModelInvocations.WithLabelValues(tier, outcome).Inc()
}

func (m *Metrics) AddPromptTokens(tier string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PromptTokens.WithLabelValues(tier).Add(float64(n))
}

func (m *Metrics) ObserveFetch(outcome string) {
	if m == nil {
		return
	}
	m.Fetches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRun(outcome string) {
	if m == nil {
		return
	}
	m.PipelineRuns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
