// Package openai implements model.ChatModel on the official OpenAI Go
// SDK.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/veriflow/stategraph/graph/model"
)

const maxAttempts = 3

// Chat is a ChatModel backed by an OpenAI chat-completion model. The
// underlying client is safe for concurrent use.
type Chat struct {
	client *openai.Client
	model  string
	usage  model.Usage
}

// Option configures a Chat.
type Option func(*Chat)

// WithUsage reports token usage of every call into u.
func WithUsage(u model.Usage) Option {
	return func(c *Chat) { c.usage = u }
}

// New creates a Chat for the given model, e.g. "gpt-4o" or
// "gpt-4o-mini".
func New(apiKey, modelName string, opts ...Option) (*Chat, error) {
	if apiKey == "" {
		return nil, errors.New("openai: API key cannot be empty")
	}
	if modelName == "" {
		return nil, errors.New("openai: model cannot be empty")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	c := &Chat{client: &client, model: modelName}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Complete implements model.ChatModel.
func (c *Chat) Complete(ctx context.Context, msgs []model.Message) (string, error) {
	var out string
	err := model.RetryTransient(ctx, maxAttempts, func() error {
		var callErr error
		out, callErr = c.call(ctx, msgs)
		return callErr
	})
	return out, err
}

// Label implements model.ChatModel. The label constraint is enforced by
// prompt plus strict output validation; an out-of-set answer is an
// error.
func (c *Chat) Label(ctx context.Context, msgs []model.Message, labels []string) (string, error) {
	constrained := append([]model.Message{}, msgs...)
	constrained = append(constrained, model.System(labelInstruction(labels)))

	answer, err := c.Complete(ctx, constrained)
	if err != nil {
		return "", err
	}
	return model.MatchLabel(answer, labels)
}

func (c *Chat) call(ctx context.Context, msgs []model.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params, err := toParams(msgs)
	if err != nil {
		return "", err
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: params,
	})
	if err != nil {
		return "", model.ClassifyError("openai", err)
	}
	if len(completion.Choices) == 0 {
		return "", &model.ProviderError{Provider: "openai", Code: "empty_response",
			Message: "no choices in response"}
	}

	if c.usage != nil {
		c.usage.Record(c.model,
			int(completion.Usage.PromptTokens),
			int(completion.Usage.CompletionTokens))
	}
	return completion.Choices[0].Message.Content, nil
}

func toParams(msgs []model.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case model.RoleSystem:
			params = append(params, openai.ChatCompletionMessageParamUnion{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(m.Content),
					},
				},
			})
		case model.RoleUser:
			params = append(params, openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(m.Content),
					},
				},
			})
		case model.RoleAssistant:
			params = append(params, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Content: openai.ChatCompletionAssistantMessageParamContentUnion{
						OfString: openai.String(m.Content),
					},
				},
			})
		default:
			return nil, fmt.Errorf("openai: unsupported message role %q", m.Role)
		}
	}
	return params, nil
}

func labelInstruction(labels []string) string {
	return fmt.Sprintf(
		"Answer with exactly one of the following labels and nothing else: %s",
		strings.Join(labels, ", "))
}
