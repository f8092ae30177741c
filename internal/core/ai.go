package core

import "context"

// Chat message roles accepted by every provider adapter.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is the provider-neutral prompt entry. Adapters translate it into
// each provider's wire shape (OpenAI keeps system in the message array,
// Anthropic and Gemini take it as a separate field).
type Message struct {
	Role    string
	Content string
}

// Chunk is one incremental piece of a streaming completion. A chunk with a
// non-nil Err is terminal: the producer emits it once and closes the channel.
type Chunk struct {
	Content string
	Err     error
}

// Provider is one LLM completion backend, usable in single-shot and
// streaming mode.
type Provider interface {
	Name() string
	Complete(ctx context.Context, messages []Message) (string, error)
	Stream(ctx context.Context, messages []Message) (<-chan Chunk, error)
}
