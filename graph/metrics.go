package graph

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics collects graph execution metrics for production
// monitoring. All metrics are namespaced "stategraph":
//
//   - steps_total (counter): node applications, by node_id and status
//     (success, error).
//   - step_latency_ms (histogram): node execution duration, by node_id and
//     status. Buckets span 1ms to 10s.
//   - branch_labels_total (counter): conditional edge decisions, by node_id
//     and label. In a self-correction loop the ratio of terminal to retry
//     labels is the loop's effectiveness.
//   - runs_total (counter): finished runs, by status (completed, failed,
//     abandoned).
//   - inflight_runs (gauge): runs currently executing.
//
// Labels are node IDs and declared edge labels, which are small fixed
// sets; run IDs deliberately do not appear as labels.
//
//	registry := prometheus.NewRegistry()
//	metrics := graph.NewPrometheusMetrics(registry)
//	runnable, err := g.Compile(graph.WithMetrics(metrics))
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
type PrometheusMetrics struct {
	stepsTotal   *prometheus.CounterVec
	stepLatency  *prometheus.HistogramVec
	branchLabels *prometheus.CounterVec
	runsTotal    *prometheus.CounterVec
	inflightRuns prometheus.Gauge

	mu      sync.RWMutex
	enabled bool
}

// NewPrometheusMetrics creates and registers the graph metrics with the
// given registry. A nil registry falls back to the Prometheus default
// registerer; a dedicated registry is recommended for isolation.
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &PrometheusMetrics{
		enabled: true,
		stepsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stategraph",
			Name:      "steps_total",
			Help:      "Node applications, by node and outcome",
		}, []string{"node_id", "status"}),
		stepLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stategraph",
			Name:      "step_latency_ms",
			Help:      "Node execution duration in milliseconds",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		}, []string{"node_id", "status"}),
		branchLabels: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stategraph",
			Name:      "branch_labels_total",
			Help:      "Conditional edge decisions, by source node and label",
		}, []string{"node_id", "label"}),
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stategraph",
			Name:      "runs_total",
			Help:      "Finished runs, by outcome",
		}, []string{"status"}),
		inflightRuns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "stategraph",
			Name:      "inflight_runs",
			Help:      "Runs currently executing",
		}),
	}
}

// RecordStep records one node application and its duration. Status is
// "success" or "error".
func (pm *PrometheusMetrics) RecordStep(nodeID string, latency time.Duration, status string) {
	if !pm.recording() {
		return
	}
	pm.stepsTotal.WithLabelValues(nodeID, status).Inc()
	pm.stepLatency.WithLabelValues(nodeID, status).Observe(float64(latency.Milliseconds()))
}

// RecordBranch records the label a conditional edge chose.
func (pm *PrometheusMetrics) RecordBranch(nodeID, label string) {
	if !pm.recording() {
		return
	}
	pm.branchLabels.WithLabelValues(nodeID, label).Inc()
}

// RecordRun records a finished run. Status is "completed", "failed" or
// "abandoned" (the consumer stopped pulling the stream).
func (pm *PrometheusMetrics) RecordRun(status string) {
	if !pm.recording() {
		return
	}
	pm.runsTotal.WithLabelValues(status).Inc()
}

// RunStarted increments the in-flight gauge.
func (pm *PrometheusMetrics) RunStarted() {
	if !pm.recording() {
		return
	}
	pm.inflightRuns.Inc()
}

// RunFinished decrements the in-flight gauge.
func (pm *PrometheusMetrics) RunFinished() {
	if !pm.recording() {
		return
	}
	pm.inflightRuns.Dec()
}

// Disable suspends recording; useful in tests that reuse a registry.
func (pm *PrometheusMetrics) Disable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = false
}

// Enable resumes recording after Disable.
func (pm *PrometheusMetrics) Enable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = true
}

func (pm *PrometheusMetrics) recording() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.enabled
}
