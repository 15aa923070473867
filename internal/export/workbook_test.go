package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/phrazzld/boardgen-api/internal/domain"
)

func TestWriteWorkbook(t *testing.T) {
	sets := []domain.QuestionSet{
		{
			Topic: "Cardiology",
			Questions: []domain.GeneratedQuestion{
				{
					Text: "Which drug treats X?",
					Options: map[string]string{
						"A": "Aspirin", "B": "Heparin", "C": "Statin", "D": "Beta blocker",
					},
					Answer:      "B",
					Explanation: "Heparin because of Y.",
				},
			},
		},
		{
			Topic: "Nephrology",
			Questions: []domain.GeneratedQuestion{
				{
					Text: "What causes Z?",
					Options: map[string]string{
						"A": "One", "B": "Two", "C": "Three", "D": "Four",
					},
					Answer:      "A",
					Explanation: "One because of W.",
				},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "questions.xlsx")
	require.NoError(t, WriteWorkbook(sets, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Questions")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"Topic", "Question", "Option A", "Option B", "Option C", "Option D",
		"Correct Answer", "Explanation",
	}, rows[0])
	assert.Equal(t, []string{
		"Cardiology", "Which drug treats X?", "Aspirin", "Heparin", "Statin",
		"Beta blocker", "B", "Heparin because of Y.",
	}, rows[1])
	assert.Equal(t, "Nephrology", rows[2][0])
	assert.Equal(t, "A", rows[2][6])
}

func TestWriteWorkbookEmptySets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteWorkbook(nil, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Questions")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
