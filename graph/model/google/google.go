// Package google implements model.ChatModel on Google's Gemini API.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/veriflow/stategraph/graph/model"
)

const maxAttempts = 3

// Chat is a ChatModel backed by a Gemini model. Gemini is the only
// provider here with a true enum-constrained output mode, so Label
// answers are schema-enforced server side.
type Chat struct {
	client *genai.Client
	model  string
	usage  model.Usage
}

// Option configures a Chat.
type Option func(*Chat)

// WithUsage reports token usage of every call into u.
func WithUsage(u model.Usage) Option {
	return func(c *Chat) { c.usage = u }
}

// New creates a Chat for the given model, e.g. "gemini-1.5-flash".
// Close the Chat when done to release the client.
func New(ctx context.Context, apiKey, modelName string, opts ...Option) (*Chat, error) {
	if apiKey == "" {
		return nil, errors.New("google: API key cannot be empty")
	}
	if modelName == "" {
		return nil, errors.New("google: model cannot be empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("google: create client: %w", err)
	}

	c := &Chat{client: client, model: modelName}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the underlying client.
func (c *Chat) Close() error {
	return c.client.Close()
}

// Complete implements model.ChatModel.
func (c *Chat) Complete(ctx context.Context, msgs []model.Message) (string, error) {
	gm := c.client.GenerativeModel(c.model)
	return c.generate(ctx, gm, msgs)
}

// Label implements model.ChatModel using Gemini's enum response mode:
// the schema restricts the output to exactly one of labels.
func (c *Chat) Label(ctx context.Context, msgs []model.Message, labels []string) (string, error) {
	gm := c.client.GenerativeModel(c.model)
	gm.ResponseMIMEType = "text/x.enum"
	gm.ResponseSchema = &genai.Schema{
		Type: genai.TypeString,
		Enum: labels,
	}

	answer, err := c.generate(ctx, gm, msgs)
	if err != nil {
		return "", err
	}
	return model.MatchLabel(answer, labels)
}

func (c *Chat) generate(ctx context.Context, gm *genai.GenerativeModel, msgs []model.Message) (string, error) {
	prompt, err := c.configure(gm, msgs)
	if err != nil {
		return "", err
	}

	var out string
	err = model.RetryTransient(ctx, maxAttempts, func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return model.ClassifyError("google", err)
		}
		out, err = extractText(resp)
		if err != nil {
			return err
		}
		if c.usage != nil && resp.UsageMetadata != nil {
			c.usage.Record(c.model,
				int(resp.UsageMetadata.PromptTokenCount),
				int(resp.UsageMetadata.CandidatesTokenCount))
		}
		return nil
	})
	return out, err
}

// configure moves system messages into the model's system instruction
// and flattens the remaining turns into one prompt. Gemini's chat API
// wants strict user/model alternation that arbitrary message slices do
// not guarantee, so a single labeled transcript is the robust encoding.
func (c *Chat) configure(gm *genai.GenerativeModel, msgs []model.Message) (string, error) {
	var system, transcript strings.Builder
	for _, m := range msgs {
		switch m.Role {
		case model.RoleSystem:
			system.WriteString(m.Content)
			system.WriteString("\n")
		case model.RoleUser:
			transcript.WriteString("User: ")
			transcript.WriteString(m.Content)
			transcript.WriteString("\n\n")
		case model.RoleAssistant:
			transcript.WriteString("Assistant: ")
			transcript.WriteString(m.Content)
			transcript.WriteString("\n\n")
		default:
			return "", fmt.Errorf("google: unsupported message role %q", m.Role)
		}
	}

	if system.Len() > 0 {
		gm.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system.String())},
		}
	}
	return strings.TrimSpace(transcript.String()), nil
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", &model.ProviderError{Provider: "google", Code: "empty_response",
			Message: "no candidates in response"}
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", &model.ProviderError{Provider: "google", Code: "empty_response",
			Message: "candidate has no content"}
	}

	var text strings.Builder
	for _, part := range content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if text.Len() == 0 {
		return "", &model.ProviderError{Provider: "google", Code: "empty_response",
			Message: "no text parts in candidate"}
	}
	return text.String(), nil
}
