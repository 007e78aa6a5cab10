package rag

import (
	"errors"
	"fmt"

	"github.com/veriflow/stategraph/graph"
	"github.com/veriflow/stategraph/graph/model"
)

// Node identifiers in the workflow.
const (
	NodeRetrieve       = "retrieve"
	NodeGenerate       = "generate"
	NodeTransformQuery = "transform_query"
)

// Config holds the collaborators the workflow needs.
type Config struct {
	// Model drafts answers, rewrites queries and grades grounding.
	Model model.ChatModel

	// Searcher retrieves web context for the current question.
	Searcher Searcher

	// Options are forwarded to Compile: emitters, trace store,
	// metrics, step cap.
	Options []graph.Option
}

// Build assembles and compiles the workflow:
//
//	retrieve -> generate -> grade -+-> useful        -> end
//	     ^                         +-> not supported -> transform_query
//	     |                                                  |
//	     +--------------------------------------------------+
//
// The returned Runnable is immutable and safe for concurrent runs.
func Build(cfg Config) (*graph.Runnable[State], error) {
	if cfg.Model == nil {
		return nil, errors.New("rag: Config.Model is required")
	}
	if cfg.Searcher == nil {
		return nil, errors.New("rag: Config.Searcher is required")
	}

	g := graph.NewStateGraph[State](Reduce)

	if err := g.AddNode(NodeRetrieve, Retrieve(cfg.Searcher)); err != nil {
		return nil, fmt.Errorf("rag: add retrieve node: %w", err)
	}
	if err := g.AddNode(NodeGenerate, Generate(cfg.Model)); err != nil {
		return nil, fmt.Errorf("rag: add generate node: %w", err)
	}
	if err := g.AddNode(NodeTransformQuery, TransformQuery(cfg.Model)); err != nil {
		return nil, fmt.Errorf("rag: add transform_query node: %w", err)
	}

	if err := g.SetEntryPoint(NodeRetrieve); err != nil {
		return nil, fmt.Errorf("rag: set entry point: %w", err)
	}
	if err := g.AddEdge(NodeRetrieve, NodeGenerate); err != nil {
		return nil, fmt.Errorf("rag: add retrieve edge: %w", err)
	}
	if err := g.AddEdge(NodeTransformQuery, NodeRetrieve); err != nil {
		return nil, fmt.Errorf("rag: add transform_query edge: %w", err)
	}
	if err := g.AddConditionalEdges(NodeGenerate, GradeGeneration(cfg.Model), map[string]string{
		LabelUseful:       graph.End,
		LabelNotSupported: NodeTransformQuery,
	}); err != nil {
		return nil, fmt.Errorf("rag: add grading edges: %w", err)
	}

	runnable, err := g.Compile(cfg.Options...)
	if err != nil {
		return nil, fmt.Errorf("rag: compile workflow: %w", err)
	}
	return runnable, nil
}
