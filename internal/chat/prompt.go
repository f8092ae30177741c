// Package chat assembles provider-neutral prompts. Everything here is pure:
// same inputs, same output, no I/O.
package chat

import (
	"fmt"

	"github.com/currentspace/mychat-api/internal/core"
	"github.com/currentspace/mychat-api/internal/models"
)

const persona = "You are a helpful AI assistant called MyChat. You provide informative, friendly, and contextual responses."

// historyWindow is how many stored entries (5 exchanges) accompany a new message.
const historyWindow = 10

// SystemPrompt returns the persona sentence, extended with the user's
// location when one was reported.
func SystemPrompt(loc *models.Location) string {
	if loc == nil {
		return persona
	}
	place := loc.Name
	if place == "" {
		place = fmt.Sprintf("%v, %v", loc.Lat, loc.Lng)
	}
	return persona + fmt.Sprintf(" The user is currently at %s. You can provide location-specific information, recommendations, and insights when relevant.", place)
}

// BuildMessages produces the ordered prompt: exactly one system entry first,
// then the last historyWindow history entries in original order, then the
// new user message.
func BuildMessages(history []models.ChatMessage, newMessage string, loc *models.Location) []core.Message {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	messages := make([]core.Message, 0, len(history)+2)
	messages = append(messages, core.Message{Role: core.RoleSystem, Content: SystemPrompt(loc)})
	for _, m := range history {
		messages = append(messages, core.Message{Role: m.Role, Content: m.Content})
	}
	return append(messages, core.Message{Role: core.RoleUser, Content: newMessage})
}
