package domain

// Subject is an exam subject within a category (e.g. "Cardiology" under a
// given specialty category).
type Subject struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
}

// Topic is a unit of study within a subject.
type Topic struct {
	ID        int64  `json:"id"`
	SubjectID int64  `json:"subject_id"`
	Name      string `json:"name"`
}

// Question is a stored exam question. Description holds the generated
// explanation text; questions with an empty description are the work items
// of the bulk-explanation task families.
type Question struct {
	ID          int64  `json:"id"`
	Text        string `json:"text"`
	Description string `json:"description,omitempty"`
}

// Option is one answer choice belonging to a question.
type Option struct {
	QuestionID int64  `json:"question_id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
}

// OptionLabels are the letter labels a generated question's options are
// keyed by, in presentation order.
var OptionLabels = []string{"A", "B", "C", "D"}

// GeneratedQuestion is one multiple-choice question produced by the
// document pipeline. Options maps an option label ("A".."D") to its text;
// Answer names the correct label.
type GeneratedQuestion struct {
	Text        string            `json:"question"`
	Options     map[string]string `json:"options"`
	Answer      string            `json:"answer"`
	Explanation string            `json:"explanation"`
}

// QuestionSet groups the questions generated from one text chunk under the
// topic extracted from that chunk.
type QuestionSet struct {
	Topic     string              `json:"topic"`
	Questions []GeneratedQuestion `json:"questions"`
}
