package store

import (
	"context"

	"github.com/phrazzld/boardgen-api/internal/domain"
)

// QuestionStore is the database gateway consumed by the task controllers
// and the synchronous count/catalog endpoints. Implementations resolve
// scope names to identifiers, fetch question and option rows, and persist
// generated explanations.
type QuestionStore interface {
	// ResolveSubjectID maps a (category, subject name) pair to the subject's ID.
	// Returns ErrSubjectNotFound if no such subject exists.
	ResolveSubjectID(ctx context.Context, categoryID int64, subjectName string) (int64, error)

	// ResolveTopicID maps a (subject, topic name) pair to the topic's ID.
	// Returns ErrTopicNotFound if no such topic exists.
	ResolveTopicID(ctx context.Context, subjectID int64, topicName string) (int64, error)

	// QuestionIDsForTopic returns the IDs of all questions linked to the topic.
	QuestionIDsForTopic(ctx context.Context, topicID int64) ([]int64, error)

	// QuestionIDsForSubject returns the IDs of all questions linked to any
	// topic of the subject.
	QuestionIDsForSubject(ctx context.Context, subjectID int64) ([]int64, error)

	// QuestionIDsMissingDescription returns the IDs of every question,
	// globally, whose description is null or blank.
	QuestionIDsMissingDescription(ctx context.Context) ([]int64, error)

	// QuestionsNeedingDescription filters the given IDs down to questions
	// whose description is null or blank and returns their full rows.
	QuestionsNeedingDescription(ctx context.Context, ids []int64) ([]domain.Question, error)

	// OptionsForQuestions returns the answer options for the given question IDs.
	OptionsForQuestions(ctx context.Context, ids []int64) ([]domain.Option, error)

	// UpdateDescription persists the generated explanation for one question.
	// Returns ErrQuestionNotFound if the question does not exist.
	UpdateDescription(ctx context.Context, questionID int64, text string) error

	// CountMissingForTopic counts topic questions still lacking a description.
	CountMissingForTopic(ctx context.Context, topicID int64) (int, error)

	// CountMissingForSubject counts subject questions still lacking a description.
	CountMissingForSubject(ctx context.Context, subjectID int64) (int, error)

	// CountMissingAll counts all questions lacking a description.
	CountMissingAll(ctx context.Context) (int, error)

	// SubjectsByCategory lists the subjects of a category.
	SubjectsByCategory(ctx context.Context, categoryID int64) ([]domain.Subject, error)

	// TopicsBySubject lists the topics of a subject.
	TopicsBySubject(ctx context.Context, subjectID int64) ([]domain.Topic, error)
}
