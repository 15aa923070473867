package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/boardgen-api/internal/domain"
	"github.com/phrazzld/boardgen-api/internal/platform/logger"
	"github.com/phrazzld/boardgen-api/internal/store"
)

// PostgresQuestionStore implements the store.QuestionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresQuestionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQuestionStore creates a new PostgreSQL implementation of the
// QuestionStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil,
// a default logger will be used.
func NewPostgresQuestionStore(db store.DBTX, log *slog.Logger) *PostgresQuestionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &PostgresQuestionStore{
		db:     db,
		logger: log.With(slog.String("component", "question_store")),
	}
}

// Ensure PostgresQuestionStore implements store.QuestionStore
var _ store.QuestionStore = (*PostgresQuestionStore)(nil)

// ResolveSubjectID implements store.QuestionStore.ResolveSubjectID.
// Returns store.ErrSubjectNotFound if no subject matches.
func (s *PostgresQuestionStore) ResolveSubjectID(
	ctx context.Context,
	categoryID int64,
	subjectName string,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id FROM subjects
		WHERE category_id = $1 AND name = $2
	`

	var id int64
	err := s.db.QueryRowContext(ctx, query, categoryID, subjectName).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("subject not found",
				slog.Int64("category_id", categoryID),
				slog.String("subject", subjectName))
			return 0, store.ErrSubjectNotFound
		}
		return 0, MapError(err)
	}

	return id, nil
}

// ResolveTopicID implements store.QuestionStore.ResolveTopicID.
// Returns store.ErrTopicNotFound if no topic matches.
func (s *PostgresQuestionStore) ResolveTopicID(
	ctx context.Context,
	subjectID int64,
	topicName string,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id FROM topics
		WHERE subject_id = $1 AND name = $2
	`

	var id int64
	err := s.db.QueryRowContext(ctx, query, subjectID, topicName).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("topic not found",
				slog.Int64("subject_id", subjectID),
				slog.String("topic", topicName))
			return 0, store.ErrTopicNotFound
		}
		return 0, MapError(err)
	}

	return id, nil
}

// QuestionIDsForTopic implements store.QuestionStore.QuestionIDsForTopic.
func (s *PostgresQuestionStore) QuestionIDsForTopic(
	ctx context.Context,
	topicID int64,
) ([]int64, error) {
	query := `
		SELECT question_id FROM topic_questions
		WHERE topic_id = $1
		ORDER BY question_id
	`
	return s.queryIDs(ctx, query, topicID)
}

// QuestionIDsForSubject implements store.QuestionStore.QuestionIDsForSubject.
// It joins across all topics of the subject.
func (s *PostgresQuestionStore) QuestionIDsForSubject(
	ctx context.Context,
	subjectID int64,
) ([]int64, error) {
	query := `
		SELECT DISTINCT tq.question_id
		FROM topic_questions tq
		JOIN topics t ON t.id = tq.topic_id
		WHERE t.subject_id = $1
		ORDER BY tq.question_id
	`
	return s.queryIDs(ctx, query, subjectID)
}

// QuestionIDsMissingDescription implements
// store.QuestionStore.QuestionIDsMissingDescription.
func (s *PostgresQuestionStore) QuestionIDsMissingDescription(
	ctx context.Context,
) ([]int64, error) {
	query := `
		SELECT id FROM questions
		WHERE description IS NULL OR btrim(description) = ''
		ORDER BY id
	`
	return s.queryIDs(ctx, query)
}

// QuestionsNeedingDescription implements
// store.QuestionStore.QuestionsNeedingDescription. The returned questions
// are ordered by ID so that processing order is deterministic.
func (s *PostgresQuestionStore) QuestionsNeedingDescription(
	ctx context.Context,
	ids []int64,
) ([]domain.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, text, COALESCE(description, '')
		FROM questions
		WHERE id = ANY($1) AND (description IS NULL OR btrim(description) = '')
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Description); err != nil {
			return nil, MapError(err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return questions, nil
}

// OptionsForQuestions implements store.QuestionStore.OptionsForQuestions.
func (s *PostgresQuestionStore) OptionsForQuestions(
	ctx context.Context,
	ids []int64,
) ([]domain.Option, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT question_id, text, is_correct
		FROM options
		WHERE question_id = ANY($1)
		ORDER BY question_id, id
	`

	rows, err := s.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var options []domain.Option
	for rows.Next() {
		var o domain.Option
		if err := rows.Scan(&o.QuestionID, &o.Text, &o.IsCorrect); err != nil {
			return nil, MapError(err)
		}
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return options, nil
}

// UpdateDescription implements store.QuestionStore.UpdateDescription.
// Returns store.ErrQuestionNotFound if no row was updated.
func (s *PostgresQuestionStore) UpdateDescription(
	ctx context.Context,
	questionID int64,
	text string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE questions SET description = $2
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query, questionID, text)
	if err != nil {
		log.Error("failed to update question description",
			slog.String("error", err.Error()),
			slog.Int64("question_id", questionID))
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if affected == 0 {
		return store.ErrQuestionNotFound
	}

	log.Debug("question description updated",
		slog.Int64("question_id", questionID),
		slog.Int("description_length", len(text)))
	return nil
}

// CountMissingForTopic implements store.QuestionStore.CountMissingForTopic.
func (s *PostgresQuestionStore) CountMissingForTopic(
	ctx context.Context,
	topicID int64,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM questions q
		JOIN topic_questions tq ON tq.question_id = q.id
		WHERE tq.topic_id = $1 AND (q.description IS NULL OR btrim(q.description) = '')
	`
	return s.queryCount(ctx, query, topicID)
}

// CountMissingForSubject implements store.QuestionStore.CountMissingForSubject.
func (s *PostgresQuestionStore) CountMissingForSubject(
	ctx context.Context,
	subjectID int64,
) (int, error) {
	query := `
		SELECT COUNT(DISTINCT q.id)
		FROM questions q
		JOIN topic_questions tq ON tq.question_id = q.id
		JOIN topics t ON t.id = tq.topic_id
		WHERE t.subject_id = $1 AND (q.description IS NULL OR btrim(q.description) = '')
	`
	return s.queryCount(ctx, query, subjectID)
}

// CountMissingAll implements store.QuestionStore.CountMissingAll.
func (s *PostgresQuestionStore) CountMissingAll(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*) FROM questions
		WHERE description IS NULL OR btrim(description) = ''
	`
	return s.queryCount(ctx, query)
}

// SubjectsByCategory implements store.QuestionStore.SubjectsByCategory.
func (s *PostgresQuestionStore) SubjectsByCategory(
	ctx context.Context,
	categoryID int64,
) ([]domain.Subject, error) {
	query := `
		SELECT id, category_id, name FROM subjects
		WHERE category_id = $1
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var subjects []domain.Subject
	for rows.Next() {
		var sub domain.Subject
		if err := rows.Scan(&sub.ID, &sub.CategoryID, &sub.Name); err != nil {
			return nil, MapError(err)
		}
		subjects = append(subjects, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return subjects, nil
}

// TopicsBySubject implements store.QuestionStore.TopicsBySubject.
func (s *PostgresQuestionStore) TopicsBySubject(
	ctx context.Context,
	subjectID int64,
) ([]domain.Topic, error) {
	query := `
		SELECT id, subject_id, name FROM topics
		WHERE subject_id = $1
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var topics []domain.Topic
	for rows.Next() {
		var t domain.Topic
		if err := rows.Scan(&t.ID, &t.SubjectID, &t.Name); err != nil {
			return nil, MapError(err)
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return topics, nil
}

// queryIDs runs a query whose result set is a single bigint column.
func (s *PostgresQuestionStore) queryIDs(
	ctx context.Context,
	query string,
	args ...any,
) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return ids, nil
}

// queryCount runs a query whose result is a single COUNT value.
func (s *PostgresQuestionStore) queryCount(
	ctx context.Context,
	query string,
	args ...any,
) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count query failed: %w", MapError(err))
	}
	return count, nil
}
