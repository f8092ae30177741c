package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/currentspace/mychat-api/internal/core"
)

// errorBody is the JSON error shape every endpoint returns.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// writeChatError maps gateway failures onto the chat error contract:
// both configuration and provider errors answer 500, with the distinguishing
// detail in the body so operators can tell them apart.
func writeChatError(w http.ResponseWriter, err error) {
	var provErr *core.ProviderError
	if errors.As(err, &provErr) {
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:   "Failed to process chat message",
			Details: provErr.Error(),
		})
		return
	}

	var cfgErr *core.ConfigError
	if errors.As(err, &cfgErr) {
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:   "Failed to process chat message",
			Details: cfgErr.Error(),
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, errorBody{
		Error:   "Failed to process chat message",
		Details: err.Error(),
	})
}

// NotFound answers unmatched routes with the same JSON error shape.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}
