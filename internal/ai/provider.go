package ai

import "context"

// Message is a single turn in a conversation.
type Message struct {
	Role    string `json:"role"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

// Provider generates a completion for a conversation.
type Provider interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}
