package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/veriflow/stategraph/graph"
	"github.com/veriflow/stategraph/graph/model"
)

// Branch labels produced by the grounding grader.
const (
	LabelUseful       = "useful"
	LabelNotSupported = "not supported"
)

const graderSystem = `You are a grader assessing whether an LLM generation is grounded in / supported by a set of retrieved facts.
Give a binary score 'yes' or 'no'. 'yes' means that the answer is supported by the facts.`

// GradeGeneration returns the classifier that checks the drafted
// answer against the retrieved facts. A grounded answer yields
// LabelUseful and ends the run; anything else yields LabelNotSupported
// and sends the workflow back through query rewriting.
func GradeGeneration(m model.ChatModel) graph.Classifier[State] {
	return func(ctx context.Context, st State) (string, error) {
		msgs := []model.Message{
			model.System(graderSystem),
			model.User(fmt.Sprintf("Set of facts:\n\n%s\n\nLLM generation: %s",
				strings.Join(st.Documents, "\n"), st.Generation)),
		}

		score, err := m.Label(ctx, msgs, []string{"yes", "no"})
		if err != nil {
			return "", fmt.Errorf("grade generation: %w", err)
		}
		if score == "yes" {
			return LabelUseful, nil
		}
		return LabelNotSupported, nil
	}
}
