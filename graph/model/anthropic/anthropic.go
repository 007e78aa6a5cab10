// Package anthropic implements model.ChatModel on the official
// Anthropic Go SDK.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/veriflow/stategraph/graph/model"
)

const (
	maxAttempts = 3
	maxTokens   = 4096
)

// Chat is a ChatModel backed by a Claude model. The underlying client
// is safe for concurrent use.
type Chat struct {
	client *anthropic.Client
	model  string
	usage  model.Usage
}

// Option configures a Chat.
type Option func(*Chat)

// WithUsage reports token usage of every call into u.
func WithUsage(u model.Usage) Option {
	return func(c *Chat) { c.usage = u }
}

// New creates a Chat for the given model, e.g.
// "claude-3-5-sonnet-20241022".
func New(apiKey, modelName string, opts ...Option) (*Chat, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic: API key cannot be empty")
	}
	if modelName == "" {
		return nil, errors.New("anthropic: model cannot be empty")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
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

// Label implements model.ChatModel. Claude has no enum-constrained
// output mode for plain text, so the constraint rides in the system
// prompt and the answer is validated against the label set.
func (c *Chat) Label(ctx context.Context, msgs []model.Message, labels []string) (string, error) {
	constrained := append([]model.Message{}, msgs...)
	constrained = append(constrained, model.System(fmt.Sprintf(
		"Answer with exactly one of the following labels and nothing else: %s",
		strings.Join(labels, ", "))))

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

	// Anthropic takes system text out of band.
	var system []anthropic.TextBlockParam
	var params []anthropic.MessageParam
	for _, m := range msgs {
		switch m.Role {
		case model.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case model.RoleUser:
			params = append(params, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case model.RoleAssistant:
			params = append(params, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			return "", fmt.Errorf("anthropic: unsupported message role %q", m.Role)
		}
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		System:    system,
		Messages:  params,
	})
	if err != nil {
		return "", model.ClassifyError("anthropic", err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", &model.ProviderError{Provider: "anthropic", Code: "empty_response",
			Message: "no text content in response"}
	}

	if c.usage != nil {
		c.usage.Record(c.model,
			int(message.Usage.InputTokens),
			int(message.Usage.OutputTokens))
	}
	return text.String(), nil
}
