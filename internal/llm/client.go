// Package llm provides chat clients and the study planning prompt.
package llm

import (
	"context"
)

// Chat roles understood by every backend. Unknown roles are sent as user
// messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a planning or review conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is a chat backend. Implementations must be safe to reuse across
// turns of the same conversation.
type Client interface {
	// Chat returns the assistant's reply text.
	Chat(ctx context.Context, messages []Message) (string, error)

	// ChatJSON decodes the reply into result, tolerating code fences and
	// prose around the JSON object.
	ChatJSON(ctx context.Context, messages []Message, result any) error
}
