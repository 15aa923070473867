package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/boardgen-api/internal/generation"
)

func TestParseQuestionSetValidResponse(t *testing.T) {
	raw := `{
		"topic": "Cardiology",
		"questions": [{
			"question": "Which drug treats X?",
			"options": {"A": "Aspirin", "B": "Heparin", "C": "Statin", "D": "Beta blocker"},
			"answer": "b",
			"explanation": "Heparin because of Y."
		}]
	}`

	set, err := parseQuestionSet(raw, "Fallback")
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", set.Topic)
	require.Len(t, set.Questions, 1)

	q := set.Questions[0]
	assert.Equal(t, "Which drug treats X?", q.Text)
	assert.Equal(t, "B", q.Answer)
	assert.Equal(t, "Heparin", q.Options["B"])
}

func TestParseQuestionSetBackfillsMissingOptions(t *testing.T) {
	raw := `{
		"topic": "T",
		"questions": [{
			"question": "Q?",
			"options": {"A": "Only option", "C": "  "},
			"answer": "A",
			"explanation": "E"
		}]
	}`

	set, err := parseQuestionSet(raw, "Fallback")
	require.NoError(t, err)

	q := set.Questions[0]
	assert.Equal(t, "Only option", q.Options["A"])
	assert.Equal(t, "Option B not provided", q.Options["B"])
	assert.Equal(t, "Option C not provided", q.Options["C"])
	assert.Equal(t, "Option D not provided", q.Options["D"])
}

func TestParseQuestionSetFallbackTopic(t *testing.T) {
	raw := `{
		"questions": [{
			"question": "Q?",
			"options": {"A": "a", "B": "b", "C": "c", "D": "d"},
			"answer": "A",
			"explanation": "E"
		}]
	}`

	set, err := parseQuestionSet(raw, "Derived Title")
	require.NoError(t, err)
	assert.Equal(t, "Derived Title", set.Topic)
}

func TestParseQuestionSetRejectsMalformedJSON(t *testing.T) {
	_, err := parseQuestionSet("not json", "T")
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)
}

func TestParseQuestionSetRejectsEmptyQuestionList(t *testing.T) {
	_, err := parseQuestionSet(`{"topic": "T", "questions": []}`, "T")
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)
}

func TestParseQuestionSetRejectsMissingRequiredFields(t *testing.T) {
	cases := map[string]string{
		"missing question text": `{"questions": [{"question": " ", "answer": "A", "explanation": "E"}]}`,
		"missing answer":        `{"questions": [{"question": "Q?", "answer": "", "explanation": "E"}]}`,
		"missing explanation":   `{"questions": [{"question": "Q?", "answer": "A", "explanation": ""}]}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseQuestionSet(raw, "T")
			assert.ErrorIs(t, err, generation.ErrInvalidResponse)
		})
	}
}
