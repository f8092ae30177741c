package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/currentspace/mychat-api/internal/core"
)

func openAIStreamServer(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, frame := range frames {
			fmt.Fprintf(w, "data: %s\n\n", frame)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func collectChunks(t *testing.T, ch <-chan core.Chunk) ([]string, error) {
	t.Helper()
	var texts []string
	for c := range ch {
		if c.Err != nil {
			return texts, c.Err
		}
		texts = append(texts, c.Content)
	}
	return texts, nil
}

func TestOpenAIStreamRelaysChunksInOrder(t *testing.T) {
	srv := openAIStreamServer(t, []string{
		`{"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"Hel"}}]}`,
		`{"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"lo"}}]}`,
	})
	defer srv.Close()

	p := NewOpenAILLM("test-key", "gpt-4-turbo-preview", srv.URL+"/v1")
	ch, err := p.Stream(context.Background(), []core.Message{{Role: core.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Stream() failed: %v", err)
	}

	chunks, err := collectChunks(t, ch)
	if err != nil {
		t.Fatalf("stream carried error chunk: %v", err)
	}
	// Exactly the two content deltas, in order; no chunk for the [DONE] sentinel.
	if len(chunks) != 2 || chunks[0] != "Hel" || chunks[1] != "lo" {
		t.Errorf("chunks = %q, want [Hel lo]", chunks)
	}
}

func TestOpenAICompleteExtractsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Hello!"}}]}`)
	}))
	defer srv.Close()

	p := NewOpenAILLM("test-key", "gpt-4-turbo-preview", srv.URL+"/v1")
	got, err := p.Complete(context.Background(), []core.Message{{Role: core.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}
	if got != "Hello!" {
		t.Errorf("Complete() = %q, want %q", got, "Hello!")
	}
}

func TestOpenAICompleteSurfacesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limit exceeded","type":"rate_limit_error"}}`)
	}))
	defer srv.Close()

	p := NewOpenAILLM("test-key", "gpt-4-turbo-preview", srv.URL+"/v1")
	_, err := p.Complete(context.Background(), []core.Message{{Role: core.RoleUser, Content: "hi"}})

	var provErr *core.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Complete() error = %T (%v), want *core.ProviderError", err, err)
	}
	if provErr.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", provErr.Provider)
	}
	if !strings.Contains(provErr.Detail, "rate limit exceeded") {
		t.Errorf("Detail = %q, want upstream message included", provErr.Detail)
	}
}

func TestOpenAIStreamErrorChunkOnBrokenUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"id\":\"c1\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"Hel\"}}]}\n\n")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		// Drop the connection mid-stream.
		if hj, ok := w.(http.Hijacker); ok {
			conn, _, _ := hj.Hijack()
			conn.Close()
		}
	}))
	defer srv.Close()

	p := NewOpenAILLM("test-key", "gpt-4-turbo-preview", srv.URL+"/v1")
	ch, err := p.Stream(context.Background(), []core.Message{{Role: core.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Stream() failed: %v", err)
	}

	chunks, streamErr := collectChunks(t, ch)
	if streamErr == nil {
		t.Fatal("expected a terminal error chunk, got clean close")
	}
	if len(chunks) != 1 || chunks[0] != "Hel" {
		t.Errorf("chunks before failure = %q, want [Hel]", chunks)
	}
}
