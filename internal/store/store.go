// Package store persists bounded, expiring conversation history keyed by a
// client-chosen session id. Persistence is best-effort: a missing store or
// session id means "no history", never an error.
package store

import (
	"context"
	"time"

	"github.com/currentspace/mychat-api/internal/models"
)

const (
	// MaxMessages caps the stored history at the most recent entries.
	MaxMessages = 20
	// HistoryTTL is the expiry applied on every write.
	HistoryTTL = 7 * 24 * time.Hour
)

// ConversationStore abstracts the key-value backend so handlers never depend
// on a specific database.
type ConversationStore interface {
	Get(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
	Put(ctx context.Context, sessionID string, messages []models.ChatMessage, ttl time.Duration) error
	Close() error
}

// Load returns the stored history, degrading to empty on a nil store, a
// missing session id, or any backend failure. Chat must work with
// persistence down.
func Load(ctx context.Context, s ConversationStore, sessionID string) []models.ChatMessage {
	if s == nil || sessionID == "" {
		return nil
	}
	msgs, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil
	}
	return msgs
}

// Append records one exchange and trims the history to the newest
// MaxMessages entries. It is read-modify-write with no locking: overlapping
// appends for the same session id are last-write-wins.
func Append(ctx context.Context, s ConversationStore, sessionID, userMsg, assistantMsg string) error {
	if s == nil || sessionID == "" {
		return nil
	}

	now := time.Now().UTC()
	msgs := append(Load(ctx, s, sessionID),
		models.ChatMessage{Role: "user", Content: userMsg, Timestamp: now},
		models.ChatMessage{Role: "assistant", Content: assistantMsg, Timestamp: now},
	)
	if len(msgs) > MaxMessages {
		msgs = msgs[len(msgs)-MaxMessages:]
	}

	return s.Put(ctx, sessionID, msgs, HistoryTTL)
}
