// -----------------------------------------------------------------------
// Metrics - optional Prometheus instrumentation for the pipeline driver
// (§12). Never required for correctness: every call here is safe to
// no-op if metrics are disabled in config.
// -----------------------------------------------------------------------

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the counters/histograms the pipeline driver reports to.
type Metrics struct {
	EvaluationDuration          *prometheus.HistogramVec
	EvaluationTotal             *prometheus.CounterVec
	TargetBranchFailsEvaluation *prometheus.CounterVec
	BuildJobsScheduled          *prometheus.CounterVec

	registry *prometheus.Registry
}

// New registers and returns the evalbot metric set against its own
// registry, so repeated construction in tests never panics on duplicate
// registration.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		EvaluationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "evalbot_evaluation_duration_seconds",
			Help:    "Wall-clock duration of one evaluation check.",
			Buckets: prometheus.DefBuckets,
		}, []string{"strategy", "check"}),
		EvaluationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evalbot_evaluation_total",
			Help: "Evaluation checks run, by strategy/check/outcome.",
		}, []string{"strategy", "check", "outcome"}),
		TargetBranchFailsEvaluation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evalbot_target_branch_fails_evaluation_total",
			Help: "Jobs aborted because the target branch itself does not evaluate.",
		}, []string{"repo"}),
		BuildJobsScheduled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evalbot_build_jobs_scheduled_total",
			Help: "BuildJobs scheduled, by architecture.",
		}, []string{"architecture"}),
	}

	registry.MustRegister(m.EvaluationDuration, m.EvaluationTotal, m.TargetBranchFailsEvaluation, m.BuildJobsScheduled)
	m.registry = registry
	return m
}

// Handler returns the HTTP handler to mount at the configured metrics
// listen address, serving exactly this instance's registry rather than
// the global default one.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
