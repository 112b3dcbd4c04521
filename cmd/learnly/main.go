// Command learnly is the adaptive retrieval and assessment engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/learnly-labs/learnly-engine/internal/adapters/driven/ai"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driven/config/file"
	indexfile "github.com/learnly-labs/learnly-engine/internal/adapters/driven/indexstore/file"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driven/storage/memory"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driven/storage/postgres"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driven/storage/sqlite"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driven/vector/flat"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driving/cli"
	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
	"github.com/learnly-labs/learnly-engine/internal/core/services"
	"github.com/learnly-labs/learnly-engine/internal/logger"
	"github.com/learnly-labs/learnly-engine/internal/normalisers"
	"github.com/learnly-labs/learnly-engine/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=v1.2.3".
var version = ""

// relational groups the stores backed by the configured storage driver.
type relational struct {
	catalog    driven.DocumentCatalog
	attempts   driven.AttemptStore
	moderation driven.ModerationLog
	close      func()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	stores, err := openRelational(ctx, settings.Storage)
	if err != nil {
		return err
	}
	defer stores.close()

	var indexStore driven.IndexStore = memory.NewIndexStore()
	if settings.Storage.Driver != domain.StorageDriverMemory {
		indexStore, err = indexfile.New(settings.Storage.IndexDir)
		if err != nil {
			return fmt.Errorf("failed to open index store: %w", err)
		}
	}

	chunkers := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(chunkers)
	chunker, err := chunkers.Build(postprocessors.DefaultChunker, map[string]any{
		"size":    settings.Chunk.Size,
		"overlap": settings.Chunk.Overlap,
	})
	if err != nil {
		return fmt.Errorf("failed to build chunker: %w", err)
	}

	providers := ai.Init(ctx, settings)
	defer providers.Close()

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("failed to open prompts: %w", err)
	}
	if err := prompts.Watch(ctx); err != nil {
		logger.Warn("Prompt edits will need a restart: %v", err)
	}

	indexService := services.NewIndexService(
		chunker, providers.EmbeddingService, indexStore, flat.Factory{}, stores.catalog,
	)
	indexService.SetExtractors(normalisers.NewDefaultRegistry())

	retrievalService := services.NewRetrievalService(
		indexService, providers.EmbeddingService, indexStore, stores.catalog,
	)
	moderationService := services.NewModerationService(stores.moderation)

	answerService := services.NewAnswerService(
		retrievalService, moderationService, providers.LLMService, settings.Retrieval.TopK,
	)
	answerService.SetPromptStore(prompts)

	quizService := services.NewQuizService(retrievalService, providers.LLMService, settings.Retrieval.QuizTopK)
	quizService.SetPromptStore(prompts)

	cli.SetServices(cli.Services{
		Ingest:     indexService,
		Retrieval:  retrievalService,
		Answer:     answerService,
		Quiz:       quizService,
		Grading:    services.NewGradingService(stores.attempts),
		Moderation: moderationService,
		Settings:   settingsService,
	})
	cli.SetModerationPolicy(settings.Moderation)
	cli.SetRetrievalTopK(settings.Retrieval.TopK)
	cli.SetVersion(version)

	return cli.Execute(ctx)
}

// openRelational opens the catalog, attempt and moderation stores for the
// configured driver.
func openRelational(ctx context.Context, cfg domain.StorageSettings) (*relational, error) {
	switch cfg.Driver {
	case domain.StorageDriverPostgres:
		store, err := postgres.NewStore(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := store.Initialize(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to initialise database: %w", err)
		}
		return &relational{
			catalog:    store.DocumentCatalog(),
			attempts:   store.AttemptStore(),
			moderation: store.ModerationLog(),
			close:      func() { _ = store.Close() },
		}, nil
	case domain.StorageDriverMemory:
		logger.Warn("Using in-memory storage; attempts and the document catalog are not persisted")
		return &relational{
			catalog:    memory.NewDocumentCatalog(),
			attempts:   memory.NewAttemptStore(),
			moderation: memory.NewModerationLog(),
			close:      func() {},
		}, nil
	default:
		store, err := sqlite.NewStore(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return &relational{
			catalog:    store.DocumentCatalog(),
			attempts:   store.AttemptStore(),
			moderation: store.ModerationLog(),
			close:      func() { _ = store.Close() },
		}, nil
	}
}
