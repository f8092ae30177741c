package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/currentspace/mychat-api/internal/chat"
	"github.com/currentspace/mychat-api/internal/core"
	"github.com/currentspace/mychat-api/internal/metrics"
	"github.com/currentspace/mychat-api/internal/models"
	"github.com/currentspace/mychat-api/internal/store"
)

type ChatHandler struct {
	registry *core.Registry
	history  store.ConversationStore
	metrics  *metrics.Collector
}

func NewChatHandler(registry *core.Registry, history store.ConversationStore, collector *metrics.Collector) *ChatHandler {
	return &ChatHandler{registry: registry, history: history, metrics: collector}
}

type chatRequest struct {
	Message   string           `json:"message"`
	SessionID string           `json:"sessionId"`
	Location  *models.Location `json:"location,omitempty"`
	Provider  string           `json:"provider,omitempty"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
	Provider  string `json:"provider"`
}

// prepare validates the request and assembles everything a completion needs.
// History loading is best-effort; a dead store must not fail the chat.
func (h *ChatHandler) prepare(r *http.Request) (*chatRequest, core.Provider, []core.Message, error) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, nil, nil, fmt.Errorf("message missing")
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	provider, err := h.registry.Lookup(req.Provider)
	if err != nil {
		return &req, nil, nil, err
	}

	history := store.Load(r.Context(), h.history, req.SessionID)
	messages := chat.BuildMessages(history, req.Message, req.Location)
	return &req, provider, messages, nil
}

// Chat answers one message in single-shot mode.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	req, provider, messages, err := h.prepare(r)
	if err != nil {
		if req == nil {
			writeError(w, http.StatusBadRequest, "Message is required")
			return
		}
		writeChatError(w, err)
		return
	}

	answer, err := provider.Complete(r.Context(), messages)
	h.metrics.RecordProviderCall(provider.Name(), "single", err)
	if err != nil {
		writeChatError(w, err)
		return
	}

	h.persist(r.Context(), req.SessionID, req.Message, answer)
	writeJSON(w, http.StatusOK, chatResponse{
		Response:  answer,
		SessionID: req.SessionID,
		Provider:  provider.Name(),
	})
}

// ChatStream answers one message as a server-sent event stream of
// data: {"content": "..."} frames. A failure after the stream has started is
// reported as a single data: {"error": "..."} frame followed by close; a
// failed client write cancels the upstream read.
func (h *ChatHandler) ChatStream(w http.ResponseWriter, r *http.Request) {
	req, provider, messages, err := h.prepare(r)
	if err != nil {
		if req == nil {
			writeError(w, http.StatusBadRequest, "Message is required")
			return
		}
		writeChatError(w, err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	chunks, err := provider.Stream(ctx, messages)
	h.metrics.RecordProviderCall(provider.Name(), "streaming", err)
	if err != nil {
		writeChatError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	var full strings.Builder

	for chunk := range chunks {
		if chunk.Err != nil {
			h.writeFrame(w, flusher, map[string]string{"error": chunk.Err.Error()})
			cancel()
			break
		}
		if err := h.writeFrame(w, flusher, map[string]string{"content": chunk.Content}); err != nil {
			// Client went away; stop pulling from the provider.
			cancel()
			break
		}
		h.metrics.RecordStreamChunk(provider.Name())
		full.WriteString(chunk.Content)
	}

	if full.Len() > 0 {
		// The request context may already be cancelled; persist anyway.
		h.persist(context.WithoutCancel(r.Context()), req.SessionID, req.Message, full.String())
	}
}

func (h *ChatHandler) writeFrame(w http.ResponseWriter, flusher http.Flusher, payload map[string]string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	if flusher != nil {
		flusher.Flush()
	}
	return nil
}

func (h *ChatHandler) persist(ctx context.Context, sessionID, userMsg, assistantMsg string) {
	if err := store.Append(ctx, h.history, sessionID, userMsg, assistantMsg); err != nil {
		log.Printf("failed to store conversation: %v", err)
	}
}
