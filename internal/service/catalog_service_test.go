package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/boardgen-api/internal/domain"
	"github.com/phrazzld/boardgen-api/internal/store"
)

type fakeCountCache struct {
	values map[string]int
	hits   int
	sets   int
}

func newFakeCountCache() *fakeCountCache {
	return &fakeCountCache{values: make(map[string]int)}
}

func (c *fakeCountCache) Get(_ context.Context, key string) (int, bool) {
	count, ok := c.values[key]
	if ok {
		c.hits++
	}
	return count, ok
}

func (c *fakeCountCache) Set(_ context.Context, key string, count int) {
	c.values[key] = count
	c.sets++
}

func TestMissingCountForTopicComputesAndCaches(t *testing.T) {
	storeCalls := 0
	qs := &mockQuestionStore{
		resolveSubjectFn: func(_ context.Context, categoryID int64, subject string) (int64, error) {
			assert.Equal(t, int64(7), categoryID)
			assert.Equal(t, "Cardiology", subject)
			return 3, nil
		},
		resolveTopicFn: func(_ context.Context, subjectID int64, topic string) (int64, error) {
			assert.Equal(t, int64(3), subjectID)
			assert.Equal(t, "Arrhythmias", topic)
			return 42, nil
		},
		countTopicFn: func(_ context.Context, topicID int64) (int, error) {
			assert.Equal(t, int64(42), topicID)
			storeCalls++
			return 12, nil
		},
	}
	cache := newFakeCountCache()
	svc := NewCatalogService(qs, cache, testLogger())

	count, err := svc.MissingCountForTopic(context.Background(), 7, "Cardiology", "Arrhythmias")
	require.NoError(t, err)
	assert.Equal(t, 12, count)
	assert.Equal(t, 1, storeCalls)
	assert.Equal(t, 1, cache.sets)

	count, err = svc.MissingCountForTopic(context.Background(), 7, "Cardiology", "Arrhythmias")
	require.NoError(t, err)
	assert.Equal(t, 12, count)
	assert.Equal(t, 1, storeCalls, "second read should be served from cache")
	assert.Equal(t, 1, cache.hits)
}

func TestMissingCountForTopicScopesCacheKeys(t *testing.T) {
	qs := &mockQuestionStore{
		resolveSubjectFn: func(context.Context, int64, string) (int64, error) { return 3, nil },
		resolveTopicFn:   func(context.Context, int64, string) (int64, error) { return 42, nil },
		countTopicFn:     func(context.Context, int64) (int, error) { return 5, nil },
	}
	cache := newFakeCountCache()
	svc := NewCatalogService(qs, cache, testLogger())

	_, err := svc.MissingCountForTopic(context.Background(), 7, "Cardiology", "Arrhythmias")
	require.NoError(t, err)
	_, err = svc.MissingCountForTopic(context.Background(), 7, "Cardiology", "Heart Failure")
	require.NoError(t, err)

	assert.Equal(t, 2, cache.sets, "distinct topics should occupy distinct keys")
	assert.Equal(t, 0, cache.hits)
}

func TestMissingCountForSubjectUnknownSubject(t *testing.T) {
	qs := &mockQuestionStore{
		resolveSubjectFn: func(context.Context, int64, string) (int64, error) {
			return 0, store.ErrSubjectNotFound
		},
	}
	cache := newFakeCountCache()
	svc := NewCatalogService(qs, cache, testLogger())

	_, err := svc.MissingCountForSubject(context.Background(), 7, "Astrology")
	require.ErrorIs(t, err, store.ErrSubjectNotFound)
	assert.Equal(t, 0, cache.sets, "errors must not be cached")
}

func TestMissingCountAllWithoutCache(t *testing.T) {
	storeCalls := 0
	qs := &mockQuestionStore{
		countAllFn: func(context.Context) (int, error) {
			storeCalls++
			return 431, nil
		},
	}
	svc := NewCatalogService(qs, nil, testLogger())

	for i := 0; i < 2; i++ {
		count, err := svc.MissingCountAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 431, count)
	}
	assert.Equal(t, 2, storeCalls, "nil cache means every read hits the store")
}

func TestSubjectsAndTopicsPassThrough(t *testing.T) {
	qs := &mockQuestionStore{
		subjectsFn: func(_ context.Context, categoryID int64) ([]domain.Subject, error) {
			assert.Equal(t, int64(7), categoryID)
			return []domain.Subject{{ID: 1, CategoryID: 7, Name: "Cardiology"}}, nil
		},
		topicsFn: func(_ context.Context, subjectID int64) ([]domain.Topic, error) {
			assert.Equal(t, int64(1), subjectID)
			return nil, errors.New("db down")
		},
	}
	svc := NewCatalogService(qs, nil, testLogger())

	subjects, err := svc.Subjects(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "Cardiology", subjects[0].Name)

	_, err = svc.Topics(context.Background(), 1)
	assert.EqualError(t, err, "db down")
}
