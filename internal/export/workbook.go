// Package export writes generated question sets to a downloadable
// spreadsheet artifact.
package export

import (
	"fmt"

	"github.com/phrazzld/boardgen-api/internal/domain"
	"github.com/xuri/excelize/v2"
)

// sheetName is the single worksheet all rows are written to.
const sheetName = "Questions"

// headerRow is the column layout of the workbook.
var headerRow = []interface{}{
	"Topic", "Question", "Option A", "Option B", "Option C", "Option D",
	"Correct Answer", "Explanation",
}

// WriteWorkbook writes the question sets to an xlsx file at path, one row
// per question. An empty set list produces a workbook with only the header
// row.
func WriteWorkbook(sets []domain.QuestionSet, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create worksheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default worksheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	row := 2
	for _, set := range sets {
		for _, q := range set.Questions {
			cells := []interface{}{
				set.Topic,
				q.Text,
				q.Options["A"],
				q.Options["B"],
				q.Options["C"],
				q.Options["D"],
				q.Answer,
				q.Explanation,
			}
			cell := fmt.Sprintf("A%d", row)
			if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
			row++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}
