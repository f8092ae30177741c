package llm

import (
	"context"
	"errors"
	"io"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"github.com/currentspace/mychat-api/internal/core"
)

// Generation knobs carried over from the original worker.
const (
	completionTemperature = 0.7
	completionMaxTokens   = 1000
)

// OpenAILLM talks to the OpenAI chat-completions API. The system entry stays
// inside the message array, so the prompt maps one-to-one.
type OpenAILLM struct {
	client *openai.Client
	model  string
}

// NewOpenAILLM builds the adapter. baseURL is overridable for tests; pass ""
// for the public API.
func NewOpenAILLM(apiKey, model, baseURL string) *OpenAILLM {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAILLM{client: openai.NewClientWithConfig(cfg), model: model}
}

func (o *OpenAILLM) Name() string { return "openai" }

func (o *OpenAILLM) Complete(ctx context.Context, messages []core.Message) (string, error) {
	temperature := float32(completionTemperature)
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    toOpenAIMessages(messages),
		Temperature: &temperature,
		MaxTokens:   completionMaxTokens,
	})
	if err != nil {
		return "", o.wrapErr(err)
	}
	if len(resp.Choices) == 0 {
		return "", &core.ProviderError{Provider: o.Name(), Detail: "no choices in response"}
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream relays delta content chunks in arrival order. The SDK consumes the
// SSE framing (data: prefixes and the [DONE] sentinel), surfacing io.EOF at
// stream end; a mid-stream failure becomes one terminal error chunk.
func (o *OpenAILLM) Stream(ctx context.Context, messages []core.Message) (<-chan core.Chunk, error) {
	temperature := float32(completionTemperature)
	stream, err := o.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    toOpenAIMessages(messages),
		Temperature: &temperature,
		MaxTokens:   completionMaxTokens,
		Stream:      true,
	})
	if err != nil {
		return nil, o.wrapErr(err)
	}

	ch := make(chan core.Chunk)
	go func() {
		defer close(ch)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				select {
				case ch <- core.Chunk{Err: o.wrapErr(err)}:
				case <-ctx.Done():
				}
				return
			}
			if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
				continue
			}
			select {
			case ch <- core.Chunk{Content: resp.Choices[0].Delta.Content}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (o *OpenAILLM) wrapErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &core.ProviderError{Provider: o.Name(), StatusCode: apiErr.HTTPStatusCode, Detail: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &core.ProviderError{Provider: o.Name(), StatusCode: reqErr.HTTPStatusCode, Detail: reqErr.Error()}
	}
	return &core.ProviderError{Provider: o.Name(), Detail: err.Error()}
}

func toOpenAIMessages(messages []core.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case core.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case core.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}
