package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/veriflow/stategraph/graph"
	"github.com/veriflow/stategraph/graph/model"
	"github.com/veriflow/stategraph/graph/tool"
)

// Searcher retrieves web context for a query. *tool.SearchTool
// satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string) ([]tool.SearchResult, error)
}

const generatePrompt = `You are an assistant for question-answering tasks.
Use the following pieces of retrieved context to answer the question.
If you don't know the answer, just say that you don't know.
Keep the answer concise.

Question: %s
Context: %s
Answer:`

const transformPrompt = `You are an expert at optimizing search queries.
The previous search for the question '%s' did not yield a valid answer.
Look at the previous question and re-write it to be a better search query.
Output only the updated query string.`

// Retrieve returns the node that searches the web for the current
// question and stores the joined result content as documents.
func Retrieve(s Searcher) graph.NodeFunc[State] {
	return func(ctx context.Context, st State) (State, error) {
		results, err := s.Search(ctx, st.Question)
		if err != nil {
			return State{}, fmt.Errorf("search for %q: %w", st.Question, err)
		}

		contents := make([]string, 0, len(results))
		for _, r := range results {
			contents = append(contents, r.Content)
		}
		return State{Documents: []string{strings.Join(contents, "\n")}}, nil
	}
}

// Generate returns the node that drafts an answer from the retrieved
// documents.
func Generate(m model.ChatModel) graph.NodeFunc[State] {
	return func(ctx context.Context, st State) (State, error) {
		prompt := fmt.Sprintf(generatePrompt, st.Question, strings.Join(st.Documents, "\n"))

		answer, err := m.Complete(ctx, []model.Message{model.User(prompt)})
		if err != nil {
			return State{}, fmt.Errorf("generate answer: %w", err)
		}
		return State{Generation: answer}, nil
	}
}

// TransformQuery returns the node that rewrites the question into a
// better search query after an ungrounded answer.
func TransformQuery(m model.ChatModel) graph.NodeFunc[State] {
	return func(ctx context.Context, st State) (State, error) {
		prompt := fmt.Sprintf(transformPrompt, st.Question)

		better, err := m.Complete(ctx, []model.Message{model.User(prompt)})
		if err != nil {
			return State{}, fmt.Errorf("rewrite query: %w", err)
		}
		return State{Question: strings.TrimSpace(better)}, nil
	}
}
