// Package rag wires a self-correcting retrieval-augmented answering
// workflow: search the web for context, draft an answer, grade the
// draft against the retrieved facts, and rewrite the query until the
// answer is grounded.
package rag

// State carries a question through the workflow, accumulating the
// retrieved context and the drafted answer.
type State struct {
	Question   string   `json:"question"`
	Generation string   `json:"generation"`
	Documents  []string `json:"documents"`
}

// Reduce merges a node's partial output into the prior state. Zero
// fields in the delta leave the prior value in place, so nodes return
// only the fields they touched.
func Reduce(prev, delta State) State {
	out := prev
	if delta.Question != "" {
		out.Question = delta.Question
	}
	if delta.Generation != "" {
		out.Generation = delta.Generation
	}
	if delta.Documents != nil {
		out.Documents = delta.Documents
	}
	return out
}
