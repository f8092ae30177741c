package llm

import (
	"context"
	"errors"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/currentspace/mychat-api/internal/core"
)

// AnthropicLLM talks to the Anthropic messages API. Unlike OpenAI, the
// system entry moves out of the message array into the request's top-level
// System field.
type AnthropicLLM struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicLLM builds the adapter. baseURL is overridable for tests; pass
// "" for the public API.
func NewAnthropicLLM(apiKey, model, baseURL string) *AnthropicLLM {
	opts := []anthropic.ClientOption{}
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &AnthropicLLM{client: anthropic.NewClient(apiKey, opts...), model: model}
}

func (a *AnthropicLLM) Name() string { return "anthropic" }

func (a *AnthropicLLM) Complete(ctx context.Context, messages []core.Message) (string, error) {
	resp, err := a.client.CreateMessages(ctx, a.buildRequest(messages))
	if err != nil {
		return "", a.wrapErr(err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			text += *block.Text
		}
	}
	if text == "" {
		return "", &core.ProviderError{Provider: a.Name(), Detail: "no text content in response"}
	}
	return text, nil
}

// Stream bridges the SDK's callback-style streaming onto a chunk channel.
// Only content_block_delta frames carry text; everything else is dropped by
// the SDK before the callback fires.
func (a *AnthropicLLM) Stream(ctx context.Context, messages []core.Message) (<-chan core.Chunk, error) {
	ch := make(chan core.Chunk)

	req := anthropic.MessagesStreamRequest{MessagesRequest: a.buildRequest(messages)}
	req.OnContentBlockDelta = func(delta anthropic.MessagesEventContentBlockDeltaData) {
		if delta.Delta.Type != "text_delta" || delta.Delta.Text == nil || *delta.Delta.Text == "" {
			return
		}
		select {
		case ch <- core.Chunk{Content: *delta.Delta.Text}:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(ch)
		if _, err := a.client.CreateMessagesStream(ctx, req); err != nil {
			select {
			case ch <- core.Chunk{Err: a.wrapErr(err)}:
			case <-ctx.Done():
			}
		}
	}()
	return ch, nil
}

func (a *AnthropicLLM) buildRequest(messages []core.Message) anthropic.MessagesRequest {
	var system string
	msgs := make([]anthropic.Message, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			system = m.Content
		case core.RoleAssistant:
			msgs = append(msgs, anthropic.Message{
				Role:    anthropic.RoleAssistant,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(m.Content)},
			})
		default:
			msgs = append(msgs, anthropic.Message{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(m.Content)},
			})
		}
	}

	temperature := float32(completionTemperature)
	return anthropic.MessagesRequest{
		Model:       anthropic.Model(a.model),
		System:      system,
		Messages:    msgs,
		MaxTokens:   completionMaxTokens,
		Temperature: &temperature,
	}
}

func (a *AnthropicLLM) wrapErr(err error) error {
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		return &core.ProviderError{Provider: a.Name(), StatusCode: reqErr.StatusCode, Detail: reqErr.Error()}
	}
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		return &core.ProviderError{Provider: a.Name(), Detail: apiErr.Message}
	}
	return &core.ProviderError{Provider: a.Name(), Detail: err.Error()}
}
