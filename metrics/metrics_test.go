package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveInvocation("final", OutcomeOK)
	m.AddPromptTokens("final", 10)
	m.ObserveFetch(OutcomeError)
	m.ObserveRun(OutcomeOK)
	m.ObserveStage("EDIT", time.Second)
}

func TestCountersRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveInvocation("fast", OutcomeError)
	m.ObserveInvocation("local", OutcomeOK)
	m.ObserveInvocation("local", OutcomeOK)
	m.AddPromptTokens("local", 120)
	m.AddPromptTokens("local", 0)
	m.ObserveFetch(OutcomeSkipped)

	if got := testutil.ToFloat64(m.ModelInvocations.WithLabelValues("local", OutcomeOK)); got != 2 {
		t.Errorf("local ok invocations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ModelInvocations.WithLabelValues("fast", OutcomeError)); got != 1 {
		t.Errorf("fast error invocations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PromptTokens.WithLabelValues("local")); got != 120 {
		t.Errorf("prompt tokens = %v, want 120", got)
	}
	if got := testutil.ToFloat64(m.Fetches.WithLabelValues(OutcomeSkipped)); got != 1 {
		t.Errorf("skipped fetches = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected registered metric families")
	}
}
