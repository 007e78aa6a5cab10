// Package model defines the chat-model abstraction used by graph nodes
// that call language models, plus usage accounting shared by the
// provider subpackages.
//
// Providers live in subpackages (openai, anthropic, google) so that an
// application depends only on the SDKs it actually uses.
package model

import "context"

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a chat conversation.
type Message struct {
	Role    Role
	Content string
}

// System builds a system message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User builds a user message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Assistant builds an assistant message.
func Assistant(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ChatModel is a language model that can complete a conversation and
// classify it into one of a fixed set of labels.
//
// Label is the constrained form used by branch classifiers: the model
// must answer with exactly one of the given labels. Providers enforce
// the constraint as strictly as their API allows (structured output
// with an enum schema where supported, prompt discipline plus output
// validation otherwise).
type ChatModel interface {
	// Complete returns the model's text response to the conversation.
	Complete(ctx context.Context, msgs []Message) (string, error)

	// Label returns one of labels as the model's classification of the
	// conversation. An answer outside labels is an error, never a
	// silently propagated value.
	Label(ctx context.Context, msgs []Message, labels []string) (string, error)
}
