package graph

import (
	"fmt"

	"github.com/veriflow/stategraph/graph/emit"
	"github.com/veriflow/stategraph/graph/store"
)

// Option configures a compiled graph. Options are applied by Compile;
// zero options yield a graph with no step cap, no event emission, no trace
// persistence, and no metrics.
type Option func(*config) error

type config struct {
	maxSteps int
	emitter  emit.Emitter
	store    store.TraceStore
	metrics  *PrometheusMetrics
}

func defaultConfig() config {
	return config{}
}

// WithMaxSteps caps the number of node applications per run. When the cap
// is reached before the graph resolves to End, the run fails with
// ErrIterationLimit. Zero (the default) means no cap, which preserves the
// classic semantics where termination rests entirely on the classifiers:
// a classifier that never selects a terminal label loops forever.
//
// For a graph with a self-correction loop of depth d and an acceptable
// retry budget of r, a cap of d*(r+1) is a reasonable starting point.
func WithMaxSteps(n int) Option {
	return func(cfg *config) error {
		if n < 0 {
			return fmt.Errorf("max steps cannot be negative: %d", n)
		}
		cfg.maxSteps = n
		return nil
	}
}

// WithEmitter wires an observability event sink. The engine emits one
// event per node application plus run-level start, branch, completion and
// failure events. See the emit package for sinks (log, buffered, OTel).
func WithEmitter(emitter emit.Emitter) Option {
	return func(cfg *config) error {
		cfg.emitter = emitter
		return nil
	}
}

// WithTraceStore persists each trace step as it is produced. The stored
// trace is an audit artifact: the engine never reads it back to resume a
// run. A store failure fails the run, so a misconfigured store is caught
// on the first step rather than silently dropping history.
func WithTraceStore(st store.TraceStore) Option {
	return func(cfg *config) error {
		cfg.store = st
		return nil
	}
}

// WithMetrics wires Prometheus metrics collection: per-node step counts
// and latencies, branch label decisions, and run outcomes.
func WithMetrics(metrics *PrometheusMetrics) Option {
	return func(cfg *config) error {
		cfg.metrics = metrics
		return nil
	}
}
