package generation

import (
	"context"

	"github.com/phrazzld/boardgen-api/internal/domain"
)

// ExplanationGenerator defines the interface for generating explanation
// text for an existing exam question. This interface serves as a boundary
// between the application core and external LLM services.
type ExplanationGenerator interface {
	// GenerateExplanation produces explanation text for a question given its
	// answer options in presentation order and the text of the correct
	// option. correctOption may be empty when no option is flagged correct.
	GenerateExplanation(
		ctx context.Context,
		question string,
		options []string,
		correctOption string,
	) (string, error)
}

// RelevanceChecker decides whether a text sample contains clinically
// relevant content suitable for question generation.
type RelevanceChecker interface {
	CheckRelevance(ctx context.Context, sample string) (bool, error)
}

// QuestionSetGenerator generates a structured set of multiple-choice
// questions from one text chunk. The returned set is validated at the
// boundary: every question carries text, four labeled options, an answer,
// and an explanation (missing optional options are back-filled with
// placeholders).
type QuestionSetGenerator interface {
	GenerateQuestionSet(ctx context.Context, chunk string) (*domain.QuestionSet, error)
}
