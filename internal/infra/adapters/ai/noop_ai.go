package ai

import (
	"context"
	"strings"

	"cledumemoire/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

// DemoNotice prefixes every answer of the noop adapter.
const DemoNotice = "[Mode démonstration] Aucun service de correction n'est configuré. Texte reçu :"

// NoopAIAdapter answers deterministically without any network call. It is
// the last fallback when no API key is configured.
type NoopAIAdapter struct{}

func NewNoopAIAdapter() *NoopAIAdapter {
	return &NoopAIAdapter{}
}

func (a *NoopAIAdapter) Name() string { return "mock" }

func (a *NoopAIAdapter) Chat(ctx context.Context, model string, messages []adapter.Message, opts adapter.ChatOptions) (string, adapter.Usage, error) {
	if err := ctx.Err(); err != nil {
		return "", adapter.Usage{}, err
	}
	last := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if strings.EqualFold(messages[i].Role, "user") {
			last = messages[i].Content
			break
		}
	}
	return DemoNotice + "\n\n" + strings.TrimSpace(last), adapter.Usage{}, nil
}
