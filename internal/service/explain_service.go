package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/boardgen-api/internal/domain"
	"github.com/phrazzld/boardgen-api/internal/events"
	"github.com/phrazzld/boardgen-api/internal/generation"
	"github.com/phrazzld/boardgen-api/internal/store"
	"github.com/phrazzld/boardgen-api/internal/task"
)

// User-visible notice texts. CancelNotice is recorded on every cancelled
// task; SoftEmptyNotice marks the completed-but-nothing-to-do case.
const (
	CancelNotice    = "Task cancelled by user."
	SoftEmptyNotice = "All questions already explained."
)

// Task family labels carried on lifecycle events.
const (
	FamilyTopic      = "explain.topic"
	FamilyAllMissing = "explain.all"
	FamilySubject    = "explain.subject"
)

// DefaultBatchSize bounds the per-query payload when the item universe
// can be large.
const DefaultBatchSize = 50

// TaskRegistry is the slice of the registry the services depend on.
type TaskRegistry interface {
	Create(id uuid.UUID, status task.Status) error
	Get(id uuid.UUID) (task.Record, bool)
	AppendResult(id uuid.UUID, item task.ItemResult)
	SetStatus(id uuid.UUID, status task.Status)
	SetMessage(id uuid.UUID, msg string)
	SetArtifact(id uuid.UUID, url string)
	SetTerminal(id uuid.UUID, status task.Status, errMsg string) (task.Record, bool)
}

// TaskExecutor is the slice of the executor the services depend on.
type TaskExecutor interface {
	Submit(id uuid.UUID, body task.BodyFunc, onPanic func(recovered any)) (*task.Handle, error)
}

// ExplainService owns the three database-backed explanation task
// families: per-topic, all-missing, and per-subject. Each started task is
// tracked in the shared registry and runs on the shared executor; the
// service keeps the live handle of every running task so cancellation can
// reach the body.
type ExplainService struct {
	store     store.QuestionStore
	generator generation.ExplanationGenerator
	registry  TaskRegistry
	executor  TaskExecutor
	emitter   events.EventEmitter
	batchSize int
	logger    *slog.Logger

	mu      sync.Mutex
	handles map[uuid.UUID]*task.Handle
}

// NewExplainService creates an ExplainService. batchSize falls back to
// DefaultBatchSize when non-positive.
func NewExplainService(
	questionStore store.QuestionStore,
	generator generation.ExplanationGenerator,
	registry TaskRegistry,
	executor TaskExecutor,
	emitter events.EventEmitter,
	batchSize int,
	logger *slog.Logger,
) *ExplainService {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ExplainService{
		store:     questionStore,
		generator: generator,
		registry:  registry,
		executor:  executor,
		emitter:   emitter,
		batchSize: batchSize,
		logger:    logger.With(slog.String("component", "explain_service")),
		handles:   make(map[uuid.UUID]*task.Handle),
	}
}

// StartTopicTask starts a task that explains every unexplained question
// of one topic, resolved by category, subject name, and topic name.
// Resolution happens inside the task body; a bad scope yields a terminal
// failed task rather than a synchronous error.
func (s *ExplainService) StartTopicTask(ctx context.Context, categoryID int64, subject, topic string) (uuid.UUID, error) {
	return s.start(ctx, FamilyTopic, func(ctx context.Context, h *task.Handle, id uuid.UUID) {
		subjectID, err := s.store.ResolveSubjectID(ctx, categoryID, subject)
		if err != nil {
			s.fail(ctx, FamilyTopic, id, fmt.Errorf("resolving subject %q: %w", subject, err))
			return
		}
		topicID, err := s.store.ResolveTopicID(ctx, subjectID, topic)
		if err != nil {
			s.fail(ctx, FamilyTopic, id, fmt.Errorf("resolving topic %q: %w", topic, err))
			return
		}
		ids, err := s.store.QuestionIDsForTopic(ctx, topicID)
		if err != nil {
			s.fail(ctx, FamilyTopic, id, fmt.Errorf("listing topic questions: %w", err))
			return
		}
		s.processQuestions(ctx, FamilyTopic, h, id, ids)
	})
}

// StartAllMissingTask starts a task that explains every question in the
// database that still lacks a description.
func (s *ExplainService) StartAllMissingTask(ctx context.Context) (uuid.UUID, error) {
	return s.start(ctx, FamilyAllMissing, func(ctx context.Context, h *task.Handle, id uuid.UUID) {
		ids, err := s.store.QuestionIDsMissingDescription(ctx)
		if err != nil {
			s.fail(ctx, FamilyAllMissing, id, fmt.Errorf("listing unexplained questions: %w", err))
			return
		}
		s.processQuestions(ctx, FamilyAllMissing, h, id, ids)
	})
}

// StartSubjectTask starts a task covering every topic of one subject.
func (s *ExplainService) StartSubjectTask(ctx context.Context, categoryID int64, subject string) (uuid.UUID, error) {
	return s.start(ctx, FamilySubject, func(ctx context.Context, h *task.Handle, id uuid.UUID) {
		subjectID, err := s.store.ResolveSubjectID(ctx, categoryID, subject)
		if err != nil {
			s.fail(ctx, FamilySubject, id, fmt.Errorf("resolving subject %q: %w", subject, err))
			return
		}
		ids, err := s.store.QuestionIDsForSubject(ctx, subjectID)
		if err != nil {
			s.fail(ctx, FamilySubject, id, fmt.Errorf("listing subject questions: %w", err))
			return
		}
		s.processQuestions(ctx, FamilySubject, h, id, ids)
	})
}

// Status returns a snapshot of the task record. ok is false for an
// unknown identifier, in which case the returned record carries
// StatusNotFound so pollers can distinguish "never existed" from an
// empty record.
func (s *ExplainService) Status(id uuid.UUID) (task.Record, bool) {
	rec, ok := s.registry.Get(id)
	if !ok {
		return task.Record{ID: id, Status: task.StatusNotFound}, false
	}
	return rec, true
}

// Cancel requests cooperative cancellation. The record is marked
// cancelled immediately so pollers see it right away; the running body
// observes the flipped handle flag at its next checkpoint and stops.
// Cancel is idempotent: cancelling a terminal or already-cancelled task
// returns the existing terminal snapshot. ok is false only for an
// unknown identifier.
func (s *ExplainService) Cancel(ctx context.Context, id uuid.UUID) (task.Record, bool) {
	return cancelTask(ctx, s.registry, s.emitter, s.logger, &s.mu, s.handles, id)
}

// start registers a record, submits the body, and returns the task ID.
func (s *ExplainService) start(ctx context.Context, family string, run func(ctx context.Context, h *task.Handle, id uuid.UUID)) (uuid.UUID, error) {
	id := uuid.New()
	if err := s.registry.Create(id, task.StatusStarted); err != nil {
		return uuid.Nil, fmt.Errorf("registering task: %w", err)
	}

	handle, err := s.executor.Submit(id, func(ctx context.Context, h *task.Handle) {
		s.registry.SetStatus(id, task.StatusProcessing)
		run(ctx, h, id)
	}, func(recovered any) {
		s.fail(context.Background(), family, id, fmt.Errorf("internal error: %v", recovered))
	})
	if err != nil {
		s.registry.SetTerminal(id, task.StatusFailed, err.Error())
		return uuid.Nil, fmt.Errorf("submitting task: %w", err)
	}

	s.mu.Lock()
	s.handles[id] = handle
	s.mu.Unlock()

	s.logger.Info("task started", "task_id", id, "family", family)
	return id, nil
}

// processQuestions is the per-item loop shared by all three families.
// ids is the family's full item universe; questions already carrying a
// description are filtered out here.
func (s *ExplainService) processQuestions(ctx context.Context, family string, h *task.Handle, id uuid.UUID, ids []int64) {
	if h.Cancelled() {
		s.removeHandle(id)
		return
	}

	questions, err := s.store.QuestionsNeedingDescription(ctx, ids)
	if err != nil {
		s.fail(ctx, family, id, fmt.Errorf("fetching questions: %w", err))
		return
	}
	if len(questions) == 0 {
		s.registry.SetMessage(id, SoftEmptyNotice)
		s.complete(ctx, family, id, SoftEmptyNotice)
		return
	}

	for batchStart := 0; batchStart < len(questions); batchStart += s.batchSize {
		batch := questions[batchStart:min(batchStart+s.batchSize, len(questions))]

		if h.Cancelled() {
			s.removeHandle(id)
			return
		}

		batchIDs := make([]int64, len(batch))
		for i, q := range batch {
			batchIDs[i] = q.ID
		}
		options, err := s.store.OptionsForQuestions(ctx, batchIDs)
		if err != nil {
			s.fail(ctx, family, id, fmt.Errorf("fetching options: %w", err))
			return
		}
		byQuestion := groupOptions(options)

		for _, q := range batch {
			if h.Cancelled() {
				s.removeHandle(id)
				return
			}
			s.processQuestion(ctx, id, q, byQuestion[q.ID])
		}
	}

	s.complete(ctx, family, id, "")
}

// processQuestion handles one item: generate, persist, record. A failure
// at either step is recorded in the item and does not abort the batch.
func (s *ExplainService) processQuestion(ctx context.Context, id uuid.UUID, q domain.Question, opts []domain.Option) {
	texts := make([]string, len(opts))
	correct := ""
	for i, o := range opts {
		texts[i] = o.Text
		if o.IsCorrect {
			correct = o.Text
		}
	}

	item := task.ItemResult{
		QuestionID:    q.ID,
		Question:      q.Text,
		Options:       texts,
		CorrectAnswer: correct,
	}

	explanation, err := s.generator.GenerateExplanation(ctx, q.Text, texts, correct)
	if err != nil {
		s.logger.Warn("explanation generation failed",
			"task_id", id, "question_id", q.ID, "error", err)
		item.Error = err.Error()
		s.registry.AppendResult(id, item)
		return
	}

	if err := s.store.UpdateDescription(ctx, q.ID, explanation); err != nil {
		s.logger.Warn("persisting explanation failed",
			"task_id", id, "question_id", q.ID, "error", err)
		item.Error = err.Error()
		s.registry.AppendResult(id, item)
		return
	}

	item.Explanation = explanation
	s.registry.AppendResult(id, item)
}

func (s *ExplainService) complete(ctx context.Context, family string, id uuid.UUID, notice string) {
	s.removeHandle(id)
	rec, ok := s.registry.SetTerminal(id, task.StatusCompleted, notice)
	if !ok {
		return
	}
	s.emit(ctx, events.NewTaskLifecycleEvent(events.TypeTaskCompleted, family, id, rec.Progress, notice))
}

func (s *ExplainService) fail(ctx context.Context, family string, id uuid.UUID, err error) {
	s.removeHandle(id)
	s.logger.Error("task failed", "task_id", id, "family", family, "error", err)
	rec, ok := s.registry.SetTerminal(id, task.StatusFailed, err.Error())
	if !ok {
		return
	}
	s.emit(ctx, events.NewTaskLifecycleEvent(events.TypeTaskFailed, family, id, rec.Progress, err.Error()))
}

func (s *ExplainService) removeHandle(id uuid.UUID) {
	s.mu.Lock()
	delete(s.handles, id)
	s.mu.Unlock()
}

func (s *ExplainService) emit(ctx context.Context, ev *events.TaskLifecycleEvent) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.EmitEvent(ctx, ev); err != nil {
		s.logger.Warn("emitting lifecycle event failed", "event_type", ev.Type, "error", err)
	}
}

// groupOptions buckets options by question ID, preserving input order
// within each bucket.
func groupOptions(options []domain.Option) map[int64][]domain.Option {
	byQuestion := make(map[int64][]domain.Option)
	for _, o := range options {
		byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], o)
	}
	return byQuestion
}

// cancelTask implements the cancellation sequence shared by both task
// family groups: flip the handle flag, drop the handle, mark the record
// cancelled. SetTerminal is first-wins, so cancelling a finished task
// simply returns its existing terminal snapshot.
func cancelTask(
	ctx context.Context,
	registry TaskRegistry,
	emitter events.EventEmitter,
	logger *slog.Logger,
	mu *sync.Mutex,
	handles map[uuid.UUID]*task.Handle,
	id uuid.UUID,
) (task.Record, bool) {
	mu.Lock()
	handle := handles[id]
	delete(handles, id)
	mu.Unlock()

	if handle != nil {
		handle.Cancel()
	}

	rec, ok := registry.SetTerminal(id, task.StatusCancelled, CancelNotice)
	if ok {
		logger.Info("task cancelled", "task_id", id)
		if emitter != nil {
			ev := events.NewTaskLifecycleEvent(events.TypeTaskCancelled, "", id, rec.Progress, CancelNotice)
			if err := emitter.EmitEvent(ctx, ev); err != nil {
				logger.Warn("emitting lifecycle event failed", "event_type", ev.Type, "error", err)
			}
		}
		return rec, true
	}

	rec, found := registry.Get(id)
	if !found {
		return task.Record{ID: id, Status: task.StatusNotFound}, false
	}
	return rec, true
}
