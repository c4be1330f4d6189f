package adapter

import "context"

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Usage for a single chat call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatOptions carries per-call sampling settings. Zero values mean provider defaults.
type ChatOptions struct {
	Temperature float64
	MaxTokens   int
}

// AIServiceAdapter is the port for LLM chat.
type AIServiceAdapter interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Chat returns the assistant text + usage as reported by the provider.
	Chat(ctx context.Context, model string, messages []Message, opts ChatOptions) (string, Usage, error)
}

// TokenCounter estimates prompt size before a call is made.
type TokenCounter interface {
	Count(model, text string) (int, error)
}
