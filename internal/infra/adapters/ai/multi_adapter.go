// File: internal/infra/adapters/ai/multi_adapter.go
package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cledumemoire/internal/domain/ports/adapter"
	"cledumemoire/internal/infra/metrics"
)

var _ adapter.AIServiceAdapter = (*MultiAIAdapter)(nil)

var ErrNoProvider = errors.New("ai: no provider configured")

// MultiAIAdapter routes a model to its provider and, when that provider
// fails, retries the remaining providers in fallback order with their own
// default model.
type MultiAIAdapter struct {
	defaultProvider string // e.g., "openai" or "gemini"
	byProvider      map[string]adapter.AIServiceAdapter
	modelToProvider map[string]string // model -> provider ("openai" | "gemini")
	fallback        []string
	log             *zerolog.Logger
}

func NewMultiAIAdapter(
	defaultProvider string,
	byProvider map[string]adapter.AIServiceAdapter,
	modelToProvider map[string]string,
	fallback []string,
	logger *zerolog.Logger,
) *MultiAIAdapter {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "MultiAIAdapter").Logger()
	return &MultiAIAdapter{
		defaultProvider: strings.ToLower(defaultProvider),
		byProvider:      byProvider,
		modelToProvider: modelToProvider,
		fallback:        fallback,
		log:             &l,
	}
}

func (m *MultiAIAdapter) Name() string { return "multi" }

func (m *MultiAIAdapter) resolveProvider(model string) string {
	if p := m.modelToProvider[model]; p != "" {
		return strings.ToLower(p)
	}
	l := strings.ToLower(model)
	switch {
	case strings.HasPrefix(l, "gemini"):
		return "gemini"
	case strings.HasPrefix(l, "gpt"): // OpenAI models
		return "openai"
	default:
		return m.defaultProvider
	}
}

func (m *MultiAIAdapter) Chat(ctx context.Context, model string, messages []adapter.Message, opts adapter.ChatOptions) (string, adapter.Usage, error) {
	primary := m.resolveProvider(model)
	tried := map[string]bool{}
	var lastErr error = ErrNoProvider

	attempt := func(prov, mdl string) (string, adapter.Usage, bool) {
		a := m.byProvider[prov]
		if a == nil || tried[prov] {
			return "", adapter.Usage{}, false
		}
		tried[prov] = true
		start := time.Now()
		out, usage, err := a.Chat(ctx, mdl, messages, opts)
		metrics.ObserveChatUsage(prov, mdl, usage.PromptTokens, usage.CompletionTokens, time.Since(start).Milliseconds(), err == nil)
		if err != nil {
			lastErr = err
			m.log.Warn().Err(err).Str("provider", prov).Msg("provider failed")
			return "", usage, false
		}
		return out, usage, true
	}

	if out, usage, ok := attempt(primary, model); ok {
		return out, usage, nil
	}
	for _, prov := range m.fallback {
		if ctx.Err() != nil {
			return "", adapter.Usage{}, ctx.Err()
		}
		if out, usage, ok := attempt(prov, ""); ok {
			return out, usage, nil
		}
	}
	return "", adapter.Usage{}, lastErr
}
