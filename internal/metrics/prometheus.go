package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exposes Recorder events as Prometheus metrics.
type PrometheusRecorder struct {
	logins         *prometheus.CounterVec
	guardDecisions *prometheus.CounterVec
	guardDuration  prometheus.Histogram
	recipeOps      *prometheus.CounterVec
	upstreamErrors prometheus.Counter
}

// NewPrometheus creates a PrometheusRecorder and registers its collectors
// with the given registerer.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "platebook_logins_total",
				Help: "Login attempts by outcome.",
			},
			[]string{"outcome"},
		),
		guardDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "platebook_guard_decisions_total",
				Help: "Access guard decisions by outcome.",
			},
			[]string{"decision"},
		),
		guardDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "platebook_guard_duration_seconds",
				Help:    "Access guard processing latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
		),
		recipeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "platebook_recipe_operations_total",
				Help: "Recipe mutations by operation.",
			},
			[]string{"operation"},
		),
		upstreamErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "platebook_upstream_errors_total",
				Help: "Failed calls to the external news provider.",
			},
		),
	}

	reg.MustRegister(r.logins, r.guardDecisions, r.guardDuration, r.recipeOps, r.upstreamErrors)
	return r
}

// IncLoginSuccess increments the successful login counter.
func (r *PrometheusRecorder) IncLoginSuccess() {
	r.logins.WithLabelValues("success").Inc()
}

// IncLoginFailure increments the failed login counter.
func (r *PrometheusRecorder) IncLoginFailure() {
	r.logins.WithLabelValues("failure").Inc()
}

// IncGuardDecision increments the counter for a guard decision.
func (r *PrometheusRecorder) IncGuardDecision(decision string) {
	r.guardDecisions.WithLabelValues(decision).Inc()
}

// ObserveGuardDuration records guard processing latency.
func (r *PrometheusRecorder) ObserveGuardDuration(duration time.Duration) {
	r.guardDuration.Observe(duration.Seconds())
}

// IncRecipeCreated increments the recipe created counter.
func (r *PrometheusRecorder) IncRecipeCreated() {
	r.recipeOps.WithLabelValues("create").Inc()
}

// IncRecipeUpdated increments the recipe updated counter.
func (r *PrometheusRecorder) IncRecipeUpdated() {
	r.recipeOps.WithLabelValues("update").Inc()
}

// IncRecipeDeleted increments the recipe deleted counter.
func (r *PrometheusRecorder) IncRecipeDeleted() {
	r.recipeOps.WithLabelValues("delete").Inc()
}

// IncUpstreamError increments the upstream failure counter.
func (r *PrometheusRecorder) IncUpstreamError() {
	r.upstreamErrors.Inc()
}
