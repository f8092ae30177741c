package chat

import (
	"fmt"
	"strings"
	"testing"

	"github.com/currentspace/mychat-api/internal/core"
	"github.com/currentspace/mychat-api/internal/models"
)

func exchangeHistory(n int) []models.ChatMessage {
	msgs := make([]models.ChatMessage, 0, n)
	for i := 0; i < n; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		msgs = append(msgs, models.ChatMessage{Role: role, Content: fmt.Sprintf("msg %d", i)})
	}
	return msgs
}

func TestBuildMessagesEmptyHistory(t *testing.T) {
	msgs := BuildMessages(nil, "hi", nil)

	if len(msgs) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(msgs))
	}
	if msgs[0].Role != core.RoleSystem {
		t.Errorf("messages[0].Role = %q, want system", msgs[0].Role)
	}
	if msgs[1].Role != core.RoleUser || msgs[1].Content != "hi" {
		t.Errorf("messages[1] = %+v, want user %q", msgs[1], "hi")
	}
}

func TestBuildMessagesTrimsHistory(t *testing.T) {
	msgs := BuildMessages(exchangeHistory(12), "hi", nil)

	// 1 system + 10 trimmed history + 1 new user message.
	if len(msgs) != 12 {
		t.Fatalf("len(messages) = %d, want 12", len(msgs))
	}
	if msgs[0].Role != core.RoleSystem {
		t.Errorf("messages[0].Role = %q, want system", msgs[0].Role)
	}
	// The two oldest history entries are dropped; order is preserved.
	if msgs[1].Content != "msg 2" {
		t.Errorf("first history entry = %q, want %q", msgs[1].Content, "msg 2")
	}
	if msgs[10].Content != "msg 11" {
		t.Errorf("last history entry = %q, want %q", msgs[10].Content, "msg 11")
	}
	if last := msgs[len(msgs)-1]; last.Role != core.RoleUser || last.Content != "hi" {
		t.Errorf("final entry = %+v, want the new user message", last)
	}
}

func TestBuildMessagesShortHistoryKeptWhole(t *testing.T) {
	msgs := BuildMessages(exchangeHistory(4), "hi", nil)
	if len(msgs) != 6 {
		t.Fatalf("len(messages) = %d, want 6", len(msgs))
	}

	systemCount := 0
	for _, m := range msgs {
		if m.Role == core.RoleSystem {
			systemCount++
		}
	}
	if systemCount != 1 {
		t.Errorf("system entries = %d, want exactly 1", systemCount)
	}
}

func TestSystemPromptLocation(t *testing.T) {
	tests := []struct {
		name string
		loc  *models.Location
		want string
	}{
		{"no location", nil, ""},
		{"named place", &models.Location{Name: "Lisbon", Lat: 38.7, Lng: -9.1}, "at Lisbon."},
		{"coordinates only", &models.Location{Lat: 38.7, Lng: -9.1}, "at 38.7, -9.1."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SystemPrompt(tt.loc)
			if !strings.HasPrefix(got, "You are a helpful AI assistant called MyChat.") {
				t.Errorf("persona sentence missing: %q", got)
			}
			if tt.want == "" {
				if strings.Contains(got, "currently at") {
					t.Errorf("SystemPrompt(nil) mentions a location: %q", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("SystemPrompt() = %q, want substring %q", got, tt.want)
			}
		})
	}
}

func TestBuildMessagesIsPure(t *testing.T) {
	history := exchangeHistory(12)
	a := BuildMessages(history, "hi", nil)
	b := BuildMessages(history, "hi", nil)

	if len(a) != len(b) {
		t.Fatalf("repeated calls differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("entry %d differs between calls: %+v vs %+v", i, a[i], b[i])
		}
	}
	if history[0].Content != "msg 0" || len(history) != 12 {
		t.Error("BuildMessages mutated its input history")
	}
}
