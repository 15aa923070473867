package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/boardgen-api/internal/domain"
	"github.com/phrazzld/boardgen-api/internal/store"
)

// CountCache is a short-TTL cache in front of the synchronous count
// queries. Implementations treat every failure as a miss.
type CountCache interface {
	Get(ctx context.Context, key string) (int, bool)
	Set(ctx context.Context, key string, count int)
}

// CatalogService serves the synchronous read endpoints: subject and
// topic listings plus missing-description counts. Counts are not
// task-backed; they are computed directly against the store, with an
// optional cache absorbing repeated polling from dashboards.
type CatalogService struct {
	store  store.QuestionStore
	cache  CountCache
	logger *slog.Logger
}

// NewCatalogService creates a CatalogService. cache may be nil.
func NewCatalogService(questionStore store.QuestionStore, cache CountCache, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:  questionStore,
		cache:  cache,
		logger: logger.With(slog.String("component", "catalog_service")),
	}
}

// Subjects lists the subjects of a category.
func (s *CatalogService) Subjects(ctx context.Context, categoryID int64) ([]domain.Subject, error) {
	return s.store.SubjectsByCategory(ctx, categoryID)
}

// Topics lists the topics of a subject.
func (s *CatalogService) Topics(ctx context.Context, subjectID int64) ([]domain.Topic, error) {
	return s.store.TopicsBySubject(ctx, subjectID)
}

// MissingCountForTopic counts the topic's questions still lacking a
// description, resolving the scope by name.
func (s *CatalogService) MissingCountForTopic(ctx context.Context, categoryID int64, subject, topic string) (int, error) {
	key := fmt.Sprintf("missing:topic:%d:%s:%s", categoryID, subject, topic)
	return s.cached(ctx, key, func(ctx context.Context) (int, error) {
		subjectID, err := s.store.ResolveSubjectID(ctx, categoryID, subject)
		if err != nil {
			return 0, err
		}
		topicID, err := s.store.ResolveTopicID(ctx, subjectID, topic)
		if err != nil {
			return 0, err
		}
		return s.store.CountMissingForTopic(ctx, topicID)
	})
}

// MissingCountForSubject counts the subject's questions still lacking a
// description, resolving the scope by name.
func (s *CatalogService) MissingCountForSubject(ctx context.Context, categoryID int64, subject string) (int, error) {
	key := fmt.Sprintf("missing:subject:%d:%s", categoryID, subject)
	return s.cached(ctx, key, func(ctx context.Context) (int, error) {
		subjectID, err := s.store.ResolveSubjectID(ctx, categoryID, subject)
		if err != nil {
			return 0, err
		}
		return s.store.CountMissingForSubject(ctx, subjectID)
	})
}

// MissingCountAll counts every question lacking a description.
func (s *CatalogService) MissingCountAll(ctx context.Context) (int, error) {
	return s.cached(ctx, "missing:all", s.store.CountMissingAll)
}

func (s *CatalogService) cached(ctx context.Context, key string, compute func(ctx context.Context) (int, error)) (int, error) {
	if s.cache != nil {
		if count, ok := s.cache.Get(ctx, key); ok {
			return count, nil
		}
	}
	count, err := compute(ctx)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, count)
	}
	return count, nil
}
