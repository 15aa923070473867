package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/boardgen-api/internal/config"
	"github.com/phrazzld/boardgen-api/internal/events"
	"github.com/phrazzld/boardgen-api/internal/ingest"
	"github.com/phrazzld/boardgen-api/internal/platform/gcs"
	"github.com/phrazzld/boardgen-api/internal/platform/gemini"
	"github.com/phrazzld/boardgen-api/internal/platform/logger"
	"github.com/phrazzld/boardgen-api/internal/platform/postgres"
	"github.com/phrazzld/boardgen-api/internal/platform/rediscache"
	"github.com/phrazzld/boardgen-api/internal/service"
	"github.com/phrazzld/boardgen-api/internal/task"
)

// application holds every initialized component. Dependencies flow
// outward from here; nothing reaches for globals.
type application struct {
	config *config.Config
	logger *slog.Logger

	db            *sql.DB
	artifactStore *gcs.ArtifactStore
	countCache    *rediscache.CountCache

	executor       *task.Executor
	explainService *service.ExplainService
	mcqService     *service.McqService
	catalogService *service.CatalogService
}

// initializeApp loads configuration and wires all application components.
func initializeApp(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"worker_count", cfg.Task.WorkerCount)

	db, err := setupAppDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	app := &application{
		config: cfg,
		logger: log,
		db:     db,
	}
	if err := app.wireServices(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func (app *application) wireServices(ctx context.Context) error {
	cfg := app.config
	log := app.logger

	questionStore := postgres.NewPostgresQuestionStore(app.db, log)

	geminiClient, err := gemini.NewClient(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create gemini client: %w", err)
	}
	explainer, err := gemini.NewExplainer(geminiClient, cfg.LLM, log)
	if err != nil {
		return fmt.Errorf("failed to create explainer: %w", err)
	}
	questionGen, err := gemini.NewQuestionGenerator(geminiClient, cfg.LLM, log)
	if err != nil {
		return fmt.Errorf("failed to create question generator: %w", err)
	}
	relevanceGate, err := gemini.NewRelevanceGate(geminiClient, cfg.LLM, log)
	if err != nil {
		return fmt.Errorf("failed to create relevance gate: %w", err)
	}

	// Optional collaborators; a blank setting disables the feature.
	var uploader service.ArtifactUploader
	if cfg.Storage.Bucket != "" {
		store, err := gcs.NewArtifactStore(ctx, cfg.Storage.Bucket, log)
		if err != nil {
			return fmt.Errorf("failed to create artifact store: %w", err)
		}
		app.artifactStore = store
		uploader = store
	} else {
		log.Warn("no artifact bucket configured, workbooks stay on local disk")
	}

	var countCache service.CountCache
	if cfg.Storage.RedisAddress != "" {
		cache, err := rediscache.NewCountCache(cfg.Storage, log)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.countCache = cache
		countCache = cache
	}

	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(events.NewLoggingHandler(log))

	app.executor = task.NewExecutor(task.ExecutorConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, log)
	app.executor.Start()

	// The explanation families and the document pipeline each own an
	// independent registry so they never contend on each other's lock.
	explainRegistry := task.NewRegistry(log.With("registry", "explain"))
	mcqRegistry := task.NewRegistry(log.With("registry", "mcq"))

	app.explainService = service.NewExplainService(
		questionStore,
		explainer,
		explainRegistry,
		app.executor,
		emitter,
		cfg.Task.BatchSize,
		log,
	)
	app.mcqService = service.NewMcqService(
		ingest.NewPDFExtractor(),
		relevanceGate,
		questionGen,
		uploader,
		mcqRegistry,
		app.executor,
		emitter,
		cfg.Task.MaxChunks,
		log,
	)
	app.catalogService = service.NewCatalogService(questionStore, countCache, log)

	return nil
}

// cleanup releases held resources in reverse initialization order.
func (app *application) cleanup() {
	if app.executor != nil {
		app.executor.Stop()
	}
	if app.countCache != nil {
		if err := app.countCache.Close(); err != nil {
			app.logger.Error("failed to close redis client", "error", err)
		}
	}
	if app.artifactStore != nil {
		if err := app.artifactStore.Close(); err != nil {
			app.logger.Error("failed to close artifact store", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", "error", err)
		}
	}
}
