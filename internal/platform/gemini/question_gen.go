package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/boardgen-api/internal/config"
	"github.com/phrazzld/boardgen-api/internal/domain"
	"github.com/phrazzld/boardgen-api/internal/generation"
	"github.com/phrazzld/boardgen-api/internal/ingest"
	"google.golang.org/genai"
)

// maxChunkChars bounds how much of a text chunk is sent to the model.
const maxChunkChars = 3000

// questionSetSystemPrompt instructs the model to return the exact JSON
// structure parseQuestionSet expects.
const questionSetSystemPrompt = `You are a medical education expert creating high-quality multiple-choice questions from clinical content.

Analyze the provided text, identify key clinical concepts, and generate 2-3 questions with 4 options each. Questions should test clinical knowledge, not memorization; distractors should be plausible; explanations should be educational and evidence-based.

Return ONLY a JSON object with this exact format:
{
  "topic": "Extracted topic name from the text",
  "questions": [
    {
      "question": "Question text here",
      "options": {"A": "...", "B": "...", "C": "...", "D": "..."},
      "answer": "A",
      "explanation": "Why A is correct and the others are wrong"
    }
  ]
}`

// QuestionGenerator implements generation.QuestionSetGenerator using the
// Gemini API. It performs a single attempt per call; the task controller
// applies the retry policy around it.
type QuestionGenerator struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewQuestionGenerator creates a QuestionGenerator using the fast model
// from the LLM configuration.
func NewQuestionGenerator(client *genai.Client, cfg config.LLMConfig, logger *slog.Logger) (*QuestionGenerator, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: client cannot be nil", generation.ErrInvalidConfig)
	}
	if cfg.FastModelName == "" {
		return nil, fmt.Errorf("%w: fast model name cannot be empty", generation.ErrInvalidConfig)
	}

	return &QuestionGenerator{
		client: client,
		model:  cfg.FastModelName,
		logger: logger.With(slog.String("component", "gemini_question_generator")),
	}, nil
}

// Ensure QuestionGenerator implements generation.QuestionSetGenerator
var _ generation.QuestionSetGenerator = (*QuestionGenerator)(nil)

// GenerateQuestionSet implements generation.QuestionSetGenerator.
func (g *QuestionGenerator) GenerateQuestionSet(
	ctx context.Context,
	chunk string,
) (*domain.QuestionSet, error) {
	if strings.TrimSpace(chunk) == "" {
		return nil, generation.ErrEmptyInput
	}

	text := chunk
	if len(text) > maxChunkChars {
		text = text[:maxChunkChars]
	}

	prompt := fmt.Sprintf(
		"Generate medical multiple-choice questions from the following text:\n\n%s\n\n"+
			"Create 2-3 high-quality questions based on the key clinical concepts. "+
			"Follow the JSON format exactly.",
		text,
	)

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(questionSetSystemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.3),
			MaxOutputTokens:   2048,
			ResponseMIMEType:  "application/json",
		})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	raw, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	set, err := parseQuestionSet(raw, ingest.Title(chunk))
	if err != nil {
		g.logger.Warn("structured generation response failed validation",
			slog.String("error", err.Error()),
			slog.Int("response_length", len(raw)))
		return nil, err
	}

	g.logger.Debug("question set generated",
		slog.String("topic", set.Topic),
		slog.Int("question_count", len(set.Questions)))
	return set, nil
}
