package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phrazzld/boardgen-api/internal/domain"
	"github.com/phrazzld/boardgen-api/internal/generation"
)

// questionSetSchema is the expected JSON structure of the structured
// question generation response.
type questionSetSchema struct {
	Topic     string           `json:"topic"`
	Questions []questionSchema `json:"questions"`
}

// questionSchema is one generated question inside the response.
type questionSchema struct {
	Question    string            `json:"question"`
	Options     map[string]string `json:"options"`
	Answer      string            `json:"answer"`
	Explanation string            `json:"explanation"`
}

// parseQuestionSet decodes and validates a structured generation response.
// Validation happens once, here at the boundary: every question must carry
// question text, an answer, and an explanation; missing lettered options
// are back-filled with placeholders rather than treated as fatal. The
// fallback topic is used when the model omits one.
func parseQuestionSet(raw string, fallbackTopic string) (*domain.QuestionSet, error) {
	var schema questionSetSchema
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrInvalidResponse, err)
	}

	if len(schema.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions in response", generation.ErrInvalidResponse)
	}

	topic := strings.TrimSpace(schema.Topic)
	if topic == "" {
		topic = fallbackTopic
	}

	set := &domain.QuestionSet{
		Topic:     topic,
		Questions: make([]domain.GeneratedQuestion, 0, len(schema.Questions)),
	}

	for i, q := range schema.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return nil, fmt.Errorf("%w: question %d missing question text",
				generation.ErrInvalidResponse, i+1)
		}
		if strings.TrimSpace(q.Answer) == "" {
			return nil, fmt.Errorf("%w: question %d missing answer",
				generation.ErrInvalidResponse, i+1)
		}
		if strings.TrimSpace(q.Explanation) == "" {
			return nil, fmt.Errorf("%w: question %d missing explanation",
				generation.ErrInvalidResponse, i+1)
		}

		options := make(map[string]string, len(domain.OptionLabels))
		for _, label := range domain.OptionLabels {
			text, ok := q.Options[label]
			if !ok || strings.TrimSpace(text) == "" {
				text = fmt.Sprintf("Option %s not provided", label)
			}
			options[label] = text
		}

		set.Questions = append(set.Questions, domain.GeneratedQuestion{
			Text:        q.Question,
			Options:     options,
			Answer:      strings.ToUpper(strings.TrimSpace(q.Answer)),
			Explanation: q.Explanation,
		})
	}

	return set, nil
}
