package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/boardgen-api/internal/config"
	"github.com/phrazzld/boardgen-api/internal/generation"
	"google.golang.org/genai"
)

// relevanceSystemPrompt constrains the model to a YES/NO verdict.
const relevanceSystemPrompt = "You are a medical education expert who determines " +
	"if content is suitable for creating medical exam questions. " +
	"Respond only with YES or NO."

// RelevanceGate implements generation.RelevanceChecker using the Gemini API.
type RelevanceGate struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewRelevanceGate creates a RelevanceGate using the fast model from the
// LLM configuration.
func NewRelevanceGate(client *genai.Client, cfg config.LLMConfig, logger *slog.Logger) (*RelevanceGate, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: client cannot be nil", generation.ErrInvalidConfig)
	}
	if cfg.FastModelName == "" {
		return nil, fmt.Errorf("%w: fast model name cannot be empty", generation.ErrInvalidConfig)
	}

	return &RelevanceGate{
		client: client,
		model:  cfg.FastModelName,
		logger: logger.With(slog.String("component", "gemini_relevance_gate")),
	}, nil
}

// Ensure RelevanceGate implements generation.RelevanceChecker
var _ generation.RelevanceChecker = (*RelevanceGate)(nil)

// CheckRelevance implements generation.RelevanceChecker. It asks the model
// for a YES/NO verdict on whether the sample contains clinically relevant
// content.
func (g *RelevanceGate) CheckRelevance(ctx context.Context, sample string) (bool, error) {
	if strings.TrimSpace(sample) == "" {
		return false, nil
	}

	prompt := fmt.Sprintf(`Analyze the following text to determine if it contains clinically relevant medical content suitable for creating medical education questions.

Text to analyze:
%s

Criteria for clinical relevance:
- Contains medical terminology, procedures, or clinical concepts
- Discusses patient care, diagnosis, treatment, or medical procedures
- Includes pathophysiology, pharmacology, or clinical decision-making

Respond with only "YES" or "NO".`, sample)

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(relevanceSystemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0),
			MaxOutputTokens:   10,
		})
	if err != nil {
		return false, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	text, err := extractText(resp)
	if err != nil {
		return false, err
	}

	verdict := strings.ToUpper(strings.TrimSpace(text))
	g.logger.Debug("relevance check complete", slog.String("verdict", verdict))

	return verdict == "YES", nil
}
