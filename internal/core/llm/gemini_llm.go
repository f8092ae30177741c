package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/currentspace/mychat-api/internal/core"
)

// GeminiLLM talks to the Gemini API. The system entry becomes the model's
// SystemInstruction, history becomes chat-session history ("assistant" maps
// to Gemini's "model" role) and the final user entry is the sent message.
type GeminiLLM struct {
	client *genai.Client
	model  string
}

func NewGeminiLLM(ctx context.Context, apiKey, model string) (*GeminiLLM, error) {
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiLLM{client: cl, model: model}, nil
}

func (g *GeminiLLM) Name() string { return "gemini" }

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiLLM) Complete(ctx context.Context, messages []core.Message) (string, error) {
	cs, last := g.startChat(messages)
	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", g.wrapErr(err)
	}
	text := flattenCandidates(resp)
	if text == "" {
		return "", &core.ProviderError{Provider: g.Name(), Detail: "no candidates in response"}
	}
	return text, nil
}

func (g *GeminiLLM) Stream(ctx context.Context, messages []core.Message) (<-chan core.Chunk, error) {
	cs, last := g.startChat(messages)
	iter := cs.SendMessageStream(ctx, genai.Text(last))

	ch := make(chan core.Chunk)
	go func() {
		defer close(ch)
		for {
			resp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				select {
				case ch <- core.Chunk{Err: g.wrapErr(err)}:
				case <-ctx.Done():
				}
				return
			}
			text := flattenCandidates(resp)
			if text == "" {
				continue
			}
			select {
			case ch <- core.Chunk{Content: text}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// startChat splits the prompt into system instruction, chat history and the
// message to send (the trailing user entry).
func (g *GeminiLLM) startChat(messages []core.Message) (*genai.ChatSession, string) {
	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(completionTemperature)
	m.SetMaxOutputTokens(completionMaxTokens)

	var last string
	if n := len(messages); n > 0 && messages[n-1].Role == core.RoleUser {
		last = messages[n-1].Content
		messages = messages[:n-1]
	}

	cs := m.StartChat()
	for _, msg := range messages {
		switch msg.Role {
		case core.RoleSystem:
			m.SystemInstruction = &genai.Content{
				Parts: []genai.Part{genai.Text(msg.Content)},
			}
		case core.RoleAssistant:
			cs.History = append(cs.History, &genai.Content{
				Role:  "model",
				Parts: []genai.Part{genai.Text(msg.Content)},
			})
		default:
			cs.History = append(cs.History, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(msg.Content)},
			})
		}
	}
	return cs, last
}

func (g *GeminiLLM) wrapErr(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &core.ProviderError{Provider: g.Name(), StatusCode: apiErr.Code, Detail: apiErr.Message}
	}
	return &core.ProviderError{Provider: g.Name(), Detail: err.Error()}
}

func flattenCandidates(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
