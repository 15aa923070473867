package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/boardgen-api/internal/domain"
	"github.com/phrazzld/boardgen-api/internal/events"
	"github.com/phrazzld/boardgen-api/internal/export"
	"github.com/phrazzld/boardgen-api/internal/generation"
	"github.com/phrazzld/boardgen-api/internal/ingest"
	"github.com/phrazzld/boardgen-api/internal/retry"
	"github.com/phrazzld/boardgen-api/internal/task"
)

// FamilyMCQ labels the document-sourced question generation family.
const FamilyMCQ = "mcq.upload"

const (
	// DefaultMaxChunks bounds how many chunks of a large document are
	// processed, keeping end-to-end latency predictable.
	DefaultMaxChunks = 4

	// relevanceSampleChars is how much of the document the relevance
	// gate inspects.
	relevanceSampleChars = 2000

	// minDocumentChars is the minimum amount of readable text required
	// before generation is attempted.
	minDocumentChars = 100
)

// ArtifactUploader persists a local file to the blob store and returns
// its download URL.
type ArtifactUploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// McqService owns the PDF-to-MCQ task family. A submitted document runs
// through extract, relevance gate, chunk, generate, dedupe, export, and
// upload stages; every stage boundary is a cancellation checkpoint.
type McqService struct {
	extractor ingest.Extractor
	relevance generation.RelevanceChecker
	generator generation.QuestionSetGenerator
	uploader  ArtifactUploader
	registry  TaskRegistry
	executor  TaskExecutor
	emitter   events.EventEmitter
	maxChunks int
	genPolicy retry.Policy
	logger    *slog.Logger

	mu      sync.Mutex
	handles map[uuid.UUID]*task.Handle
}

// NewMcqService creates an McqService. maxChunks falls back to
// DefaultMaxChunks when non-positive. uploader may be nil, in which case
// the exported workbook stays on local disk and its path is recorded as
// the artifact.
func NewMcqService(
	extractor ingest.Extractor,
	relevance generation.RelevanceChecker,
	generator generation.QuestionSetGenerator,
	uploader ArtifactUploader,
	registry TaskRegistry,
	executor TaskExecutor,
	emitter events.EventEmitter,
	maxChunks int,
	logger *slog.Logger,
) *McqService {
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}
	return &McqService{
		extractor: extractor,
		relevance: relevance,
		generator: generator,
		uploader:  uploader,
		registry:  registry,
		executor:  executor,
		emitter:   emitter,
		maxChunks: maxChunks,
		genPolicy: retry.Policy{MaxAttempts: 2, Delay: 2 * time.Second},
		logger:    logger.With(slog.String("component", "mcq_service")),
		handles:   make(map[uuid.UUID]*task.Handle),
	}
}

// StartFromDocument starts a generation task for the uploaded document
// bytes and returns the task ID immediately.
func (s *McqService) StartFromDocument(ctx context.Context, document []byte) (uuid.UUID, error) {
	id := uuid.New()
	if err := s.registry.Create(id, task.StatusStarted); err != nil {
		return uuid.Nil, fmt.Errorf("registering task: %w", err)
	}

	handle, err := s.executor.Submit(id, func(ctx context.Context, h *task.Handle) {
		s.registry.SetStatus(id, task.StatusProcessing)
		s.runPipeline(ctx, h, id, document)
	}, func(recovered any) {
		s.fail(context.Background(), id, fmt.Errorf("internal error: %v", recovered))
	})
	if err != nil {
		s.registry.SetTerminal(id, task.StatusFailed, err.Error())
		return uuid.Nil, fmt.Errorf("submitting task: %w", err)
	}

	s.mu.Lock()
	s.handles[id] = handle
	s.mu.Unlock()

	s.logger.Info("task started", "task_id", id, "family", FamilyMCQ, "document_bytes", len(document))
	return id, nil
}

// Status returns a snapshot of the task record, with StatusNotFound and
// ok false for an unknown identifier.
func (s *McqService) Status(id uuid.UUID) (task.Record, bool) {
	rec, ok := s.registry.Get(id)
	if !ok {
		return task.Record{ID: id, Status: task.StatusNotFound}, false
	}
	return rec, true
}

// Cancel requests cooperative cancellation; see ExplainService.Cancel
// for the semantics.
func (s *McqService) Cancel(ctx context.Context, id uuid.UUID) (task.Record, bool) {
	return cancelTask(ctx, s.registry, s.emitter, s.logger, &s.mu, s.handles, id)
}

func (s *McqService) runPipeline(ctx context.Context, h *task.Handle, id uuid.UUID, document []byte) {
	text, err := s.extractor.ExtractText(document)
	if err != nil {
		s.fail(ctx, id, fmt.Errorf("extracting document text: %w", err))
		return
	}
	if len(text) < minDocumentChars {
		s.fail(ctx, id, fmt.Errorf("document does not contain enough readable text"))
		return
	}

	if h.Cancelled() {
		s.removeHandle(id)
		return
	}

	if !s.isRelevant(ctx, id, text) {
		s.fail(ctx, id, fmt.Errorf("document content is not clinically relevant"))
		return
	}

	if h.Cancelled() {
		s.removeHandle(id)
		return
	}

	chunks := ingest.Chunks(text, ingest.DefaultWindow, ingest.DefaultStep)
	if len(chunks) == 0 {
		// Shorter than one window; generate from the whole document.
		chunks = []string{text}
	}
	if len(chunks) > s.maxChunks {
		chunks = chunks[:s.maxChunks]
	}

	sets := s.generateSets(ctx, h, id, chunks)
	if h.Cancelled() {
		s.removeHandle(id)
		return
	}
	if countQuestions(sets) == 0 {
		s.fail(ctx, id, fmt.Errorf("no questions could be generated from the document"))
		return
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("mcq-%s.xlsx", id))
	if err := export.WriteWorkbook(sets, path); err != nil {
		s.fail(ctx, id, fmt.Errorf("writing workbook: %w", err))
		return
	}

	if h.Cancelled() {
		os.Remove(path)
		s.removeHandle(id)
		return
	}

	if s.uploader == nil {
		s.registry.SetArtifact(id, path)
	} else {
		url, err := s.uploader.Upload(ctx, path)
		os.Remove(path)
		if err != nil {
			s.fail(ctx, id, fmt.Errorf("uploading workbook: %w", err))
			return
		}
		s.registry.SetArtifact(id, url)
	}

	s.complete(ctx, id)
}

// isRelevant runs the relevance gate over the document's leading sample.
// A gate failure is treated as relevant so that an upstream hiccup never
// blocks generation.
func (s *McqService) isRelevant(ctx context.Context, id uuid.UUID, text string) bool {
	sample := text
	if len(sample) > relevanceSampleChars {
		sample = sample[:relevanceSampleChars]
	}
	relevant, err := s.relevance.CheckRelevance(ctx, sample)
	if err != nil {
		s.logger.Warn("relevance check failed, proceeding",
			"task_id", id, "error", err)
		return true
	}
	return relevant
}

// generateSets runs structured generation per chunk, deduplicates
// questions across chunks by exact question text keeping the first
// occurrence, and records each kept question as an item. A chunk whose
// generation exhausts its retries contributes nothing and the pipeline
// continues.
func (s *McqService) generateSets(ctx context.Context, h *task.Handle, id uuid.UUID, chunks []string) []domain.QuestionSet {
	seen := make(map[string]bool)
	var sets []domain.QuestionSet

	for i, chunk := range chunks {
		if h.Cancelled() {
			return sets
		}

		var set *domain.QuestionSet
		err := s.genPolicy.Do(ctx, s.logger, "generate_question_set", func(ctx context.Context) error {
			generated, err := s.generator.GenerateQuestionSet(ctx, chunk)
			if err != nil {
				return err
			}
			set = generated
			return nil
		})
		if err != nil {
			s.logger.Warn("question generation exhausted retries for chunk",
				"task_id", id, "chunk", i+1, "error", err)
			continue
		}

		kept := domain.QuestionSet{Topic: set.Topic}
		for _, q := range set.Questions {
			if seen[q.Text] {
				continue
			}
			seen[q.Text] = true
			kept.Questions = append(kept.Questions, q)
			s.registry.AppendResult(id, questionItem(q))
		}
		if len(kept.Questions) > 0 {
			sets = append(sets, kept)
		}
	}

	return sets
}

// questionItem flattens one generated question into an item result,
// with options in label order and the answer resolved to its option text
// when present.
func questionItem(q domain.GeneratedQuestion) task.ItemResult {
	options := make([]string, 0, len(domain.OptionLabels))
	for _, label := range domain.OptionLabels {
		options = append(options, q.Options[label])
	}
	correct := q.Options[q.Answer]
	if correct == "" {
		correct = q.Answer
	}
	return task.ItemResult{
		Question:      q.Text,
		Options:       options,
		CorrectAnswer: correct,
		Explanation:   q.Explanation,
	}
}

func countQuestions(sets []domain.QuestionSet) int {
	n := 0
	for _, set := range sets {
		n += len(set.Questions)
	}
	return n
}

func (s *McqService) complete(ctx context.Context, id uuid.UUID) {
	s.removeHandle(id)
	rec, ok := s.registry.SetTerminal(id, task.StatusCompleted, "")
	if !ok {
		return
	}
	s.emit(ctx, events.NewTaskLifecycleEvent(events.TypeTaskCompleted, FamilyMCQ, id, rec.Progress, ""))
}

func (s *McqService) fail(ctx context.Context, id uuid.UUID, err error) {
	s.removeHandle(id)
	s.logger.Error("task failed", "task_id", id, "family", FamilyMCQ, "error", err)
	rec, ok := s.registry.SetTerminal(id, task.StatusFailed, err.Error())
	if !ok {
		return
	}
	s.emit(ctx, events.NewTaskLifecycleEvent(events.TypeTaskFailed, FamilyMCQ, id, rec.Progress, err.Error()))
}

func (s *McqService) removeHandle(id uuid.UUID) {
	s.mu.Lock()
	delete(s.handles, id)
	s.mu.Unlock()
}

func (s *McqService) emit(ctx context.Context, ev *events.TaskLifecycleEvent) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.EmitEvent(ctx, ev); err != nil {
		s.logger.Warn("emitting lifecycle event failed", "event_type", ev.Type, "error", err)
	}
}
