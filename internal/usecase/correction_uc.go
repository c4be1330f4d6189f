package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/ports/adapter"
	"cledumemoire/internal/infra/logging"
	"cledumemoire/internal/infra/metrics"
)

const correctionSystemPrompt = `Tu es un correcteur académique francophone spécialisé dans les mémoires universitaires.
Corrige l'orthographe, la grammaire, la ponctuation et la syntaxe du texte fourni.
Améliore le style pour un registre académique sans changer le sens ni ajouter de contenu.
Réponds uniquement avec le texte corrigé, sans commentaire.`

// CorrectionConfig tunes the proofreading call.
type CorrectionConfig struct {
	Model          string
	Temperature    float64
	MaxInputTokens int
}

type CorrectionResult struct {
	Original    string
	Corrected   string
	InputTokens int
	Usage       adapter.Usage
}

type CorrectionUseCase interface {
	Correct(ctx context.Context, userID, text string) (*CorrectionResult, error)
}

var _ CorrectionUseCase = (*correctionUC)(nil)

type correctionUC struct {
	ai      adapter.AIServiceAdapter
	counter adapter.TokenCounter
	cfg     CorrectionConfig
	log     *zerolog.Logger
}

func NewCorrectionUseCase(ai adapter.AIServiceAdapter, counter adapter.TokenCounter, cfg CorrectionConfig, logger *zerolog.Logger) CorrectionUseCase {
	return &correctionUC{ai: ai, counter: counter, cfg: cfg, log: logging.Component(loggerOrNop(logger), "CorrectionUseCase")}
}

func (c *correctionUC) Correct(ctx context.Context, userID, text string) (*CorrectionResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrInvalidArgument
	}

	n := 0
	if c.counter != nil {
		var err error
		if n, err = c.counter.Count(c.cfg.Model, text); err != nil {
			logging.With(ctx, c.log).Debug().Err(err).Msg("token count failed")
		}
	}
	if c.cfg.MaxInputTokens > 0 && n > c.cfg.MaxInputTokens {
		metrics.IncAIInputRejected()
		return nil, domain.ErrTextTooLong
	}

	out, usage, err := c.ai.Chat(ctx, c.cfg.Model, []adapter.Message{
		{Role: "system", Content: correctionSystemPrompt},
		{Role: "user", Content: text},
	}, adapter.ChatOptions{Temperature: c.cfg.Temperature})
	if err != nil {
		return nil, logFailure(ctx, c.log, "correct", err)
	}
	logging.With(ctx, c.log).Debug().Int("input_tokens", n).Int("total_tokens", usage.TotalTokens).Msg("correction done")
	return &CorrectionResult{Original: text, Corrected: strings.TrimSpace(out), InputTokens: n, Usage: usage}, nil
}
