package graph

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/veriflow/stategraph/graph/emit"
)

// Step is one trace event of a run: the node that was applied and the
// state after its delta was merged. Steps are produced in strict execution
// order, one per node application, and each state reflects the merges of
// all prior steps of the same run.
type Step[S any] struct {
	// NodeID is the node that produced this step.
	NodeID string

	// State is the run state after merging this node's delta. It is a
	// snapshot: later steps do not mutate it (see Clone for the snapshot
	// mechanism and its limits).
	State S

	// Label is the branch label chosen by the node's conditional edge, or
	// empty when the outgoing edge is direct.
	Label string

	// Terminal reports that the outgoing edge resolved to End and the run
	// completed with this step.
	Terminal bool
}

// Runnable is a compiled, immutable workflow graph. It is read-only after
// Compile and safe to share: any number of runs may execute concurrently,
// each owning its own state record. Nothing is shared between runs at the
// engine level; if node implementations share resources (a pooled HTTP
// client, a model handle), that discipline is theirs.
type Runnable[S any] struct {
	reducer  Reducer[S]
	nodes    map[string]Node[S]
	edges    map[string]edge[S]
	entry    string
	warnings []string
	cfg      config
}

// Warnings returns compile-time findings that did not fail compilation,
// currently the IDs of nodes unreachable from the entry point.
func (r *Runnable[S]) Warnings() []string {
	return r.warnings
}

// Run drives the graph from the entry point to End and returns the final
// state. On failure it returns the state as of the last successful merge
// together with the error: the failing node's own delta is never merged.
// Errors surface as *NodeError (node or classifier failure),
// *UnhandledLabelError, ErrIterationLimit, or the context's error.
//
// runID names the run in trace events, metrics and the trace store; use a
// fresh ID per run.
func (r *Runnable[S]) Run(ctx context.Context, runID string, initial S) (S, error) {
	state := initial
	for step, err := range r.Stream(ctx, runID, initial) {
		if err != nil {
			return state, err
		}
		state = step.State
	}
	return state, nil
}

// Stream executes the graph lazily, yielding one Step per node application
// in execution order. The sequence is pull-based: the next node does not
// run until the consumer asks for the next step, and breaking out of the
// loop stops the run before any further node executes. A run that never
// resolves to End yields an unbounded sequence unless capped with
// WithMaxSteps.
//
// The final yield is either a Step with Terminal set or a non-nil error;
// after an error the sequence ends. The sequence must be consumed from a
// single goroutine, and a Runnable may serve many concurrent Streams as
// long as each has its own initial state.
func (r *Runnable[S]) Stream(ctx context.Context, runID string, initial S) iter.Seq2[Step[S], error] {
	return func(yield func(Step[S], error) bool) {
		state := initial
		current := r.entry
		stepN := 0

		if r.cfg.metrics != nil {
			r.cfg.metrics.RunStarted()
		}
		fail := func(err error) {
			r.emit(emit.Event{RunID: runID, Step: stepN, NodeID: current, Msg: "run_failed",
				Meta: map[string]any{"error": err.Error()}})
			if r.cfg.metrics != nil {
				r.cfg.metrics.RecordRun("failed")
				r.cfg.metrics.RunFinished()
			}
			yield(Step[S]{}, err)
		}

		for {
			stepN++

			if r.cfg.maxSteps > 0 && stepN > r.cfg.maxSteps {
				fail(fmt.Errorf("%w (%d steps)", ErrIterationLimit, r.cfg.maxSteps))
				return
			}

			select {
			case <-ctx.Done():
				fail(ctx.Err())
				return
			default:
			}

			start := time.Now()
			delta, err := r.nodes[current].Run(ctx, state)
			if err != nil {
				if r.cfg.metrics != nil {
					r.cfg.metrics.RecordStep(current, time.Since(start), "error")
				}
				fail(&NodeError{NodeID: current, Err: err})
				return
			}

			state = r.reducer(state, delta)
			if r.cfg.metrics != nil {
				r.cfg.metrics.RecordStep(current, time.Since(start), "success")
			}

			if r.cfg.store != nil {
				if err := r.cfg.store.AppendStep(ctx, runID, stepN, current, state); err != nil {
					fail(fmt.Errorf("persist step %d: %w", stepN, err))
					return
				}
			}
			r.emit(emit.Event{RunID: runID, Step: stepN, NodeID: current, Msg: "node_completed",
				Meta: map[string]any{"duration_ms": time.Since(start).Milliseconds()}})

			next, label, err := r.resolve(ctx, current, state)
			if err != nil {
				fail(err)
				return
			}
			if label != "" {
				r.emit(emit.Event{RunID: runID, Step: stepN, NodeID: current, Msg: "branch_decision",
					Meta: map[string]any{"label": label, "target": next}})
				if r.cfg.metrics != nil {
					r.cfg.metrics.RecordBranch(current, label)
				}
			}

			terminal := next == End
			if !yield(Step[S]{NodeID: current, State: snapshot(state), Label: label, Terminal: terminal}, nil) {
				// Consumer stopped pulling; the run makes no further progress.
				if r.cfg.metrics != nil {
					r.cfg.metrics.RecordRun("abandoned")
					r.cfg.metrics.RunFinished()
				}
				return
			}
			if terminal {
				r.emit(emit.Event{RunID: runID, Step: stepN, NodeID: current, Msg: "run_completed"})
				if r.cfg.metrics != nil {
					r.cfg.metrics.RecordRun("completed")
					r.cfg.metrics.RunFinished()
				}
				return
			}
			current = next
		}
	}
}

// resolve follows the outgoing edge of from against the post-merge state.
// Direct edges never inspect the state. For conditional edges the returned
// label is the classifier's choice.
func (r *Runnable[S]) resolve(ctx context.Context, from string, state S) (next, label string, err error) {
	e := r.edges[from]
	if !e.conditional() {
		return e.to, "", nil
	}

	label, err = e.classify(ctx, state)
	if err != nil {
		return "", "", &NodeError{NodeID: from, Err: err}
	}
	next, ok := e.targets[label]
	if !ok {
		return "", "", &UnhandledLabelError{NodeID: from, Label: label}
	}
	return next, label, nil
}

func (r *Runnable[S]) emit(event emit.Event) {
	if r.cfg.emitter != nil {
		r.cfg.emitter.Emit(event)
	}
}

// snapshot isolates the state handed to a trace consumer from the engine's
// working copy. States that do not survive a JSON round trip are passed
// through live.
func snapshot[S any](state S) S {
	copied, err := Clone(state)
	if err != nil {
		return state
	}
	return copied
}
