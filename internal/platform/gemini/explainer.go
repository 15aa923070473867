package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/boardgen-api/internal/config"
	"github.com/phrazzld/boardgen-api/internal/generation"
	"github.com/phrazzld/boardgen-api/internal/retry"
	"google.golang.org/genai"
)

// explanationSystemPrompt frames the model as a medical educator producing
// concise board-style explanations.
const explanationSystemPrompt = "You are a medical educator providing clear, " +
	"accurate explanations for board-style exam questions. Focus on educational " +
	"value and clinical reasoning. Use professional medical language."

// Explainer implements generation.ExplanationGenerator using the Gemini
// API. Transient API errors are retried with the configured fixed-delay
// policy; malformed or safety-blocked responses are returned immediately.
type Explainer struct {
	client *genai.Client
	model  string
	policy retry.Policy
	logger *slog.Logger
}

// NewExplainer creates an Explainer using the explanation model and retry
// settings from the LLM configuration.
func NewExplainer(client *genai.Client, cfg config.LLMConfig, logger *slog.Logger) (*Explainer, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: client cannot be nil", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	attempts := cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	return &Explainer{
		client: client,
		model:  cfg.ModelName,
		policy: retry.Policy{
			MaxAttempts: attempts,
			Delay:       time.Duration(cfg.RetryDelaySeconds) * time.Second,
		},
		logger: logger.With(slog.String("component", "gemini_explainer")),
	}, nil
}

// Ensure Explainer implements generation.ExplanationGenerator
var _ generation.ExplanationGenerator = (*Explainer)(nil)

// GenerateExplanation implements generation.ExplanationGenerator.
func (g *Explainer) GenerateExplanation(
	ctx context.Context,
	question string,
	options []string,
	correctOption string,
) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", generation.ErrEmptyInput
	}

	prompt := buildExplanationPrompt(question, options, correctOption)

	var explanation string
	err := g.policy.Do(ctx, g.logger, "generate_explanation", func(ctx context.Context) error {
		resp, err := g.client.Models.GenerateContent(ctx, g.model,
			genai.Text(prompt),
			&genai.GenerateContentConfig{
				SystemInstruction: genai.NewContentFromText(explanationSystemPrompt, genai.RoleUser),
				Temperature:       genai.Ptr[float32](0.2),
				MaxOutputTokens:   1024,
			})
		if err != nil {
			// API errors are assumed transient and retried.
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}

		text, err := extractText(resp)
		if err != nil {
			if isPermanent(err) {
				return retry.Permanent(err)
			}
			return err
		}

		explanation = strings.TrimSpace(text)
		return nil
	})
	if err != nil {
		return "", err
	}

	g.logger.Debug("explanation generated",
		slog.Int("question_length", len(question)),
		slog.Int("explanation_length", len(explanation)))
	return explanation, nil
}

// buildExplanationPrompt formats the question with lettered options and
// the correct answer, and states the explanation requirements.
func buildExplanationPrompt(question string, options []string, correctOption string) string {
	var b strings.Builder

	b.WriteString("Provide a clear, concise medical explanation for this question:\n\n")
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n")

	if len(options) > 0 {
		b.WriteString("\nOptions:\n")
		for i, option := range options {
			fmt.Fprintf(&b, "%c. %s\n", 'A'+i, option)
		}
	}

	if correctOption != "" {
		b.WriteString("\nCorrect answer: ")
		b.WriteString(correctOption)
		b.WriteString("\n")
	}

	b.WriteString(`
Requirements:
1. Explain why the correct answer is right
2. Briefly explain why the other options are incorrect
3. Include key medical facts and reasoning
4. Stay focused and educational
5. Aim for 200-400 words

Format as a clear, well-structured explanation suitable for medical students.`)

	return b.String()
}
