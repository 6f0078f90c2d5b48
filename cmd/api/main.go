package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transcript-rag/internal/config"
	"transcript-rag/internal/http"
	"transcript-rag/internal/llm"
	"transcript-rag/internal/rag"
	"transcript-rag/internal/service"
	"transcript-rag/internal/storage"
	"transcript-rag/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers questions about YouTube videos from their transcripts, linking every
// answer paragraph to the moment in a video that supports it.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Transcript RAG API
//   description: |
//     Retrieval-augmented question answering over indexed YouTube transcripts.
//     Answers are split into paragraphs, each carrying a timestamped watch link.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

const (
	shutdownTimeout      = 15 * time.Second
	tokenizerLoadTimeout = 10 * time.Second
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, closeLog, err := config.SetupLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	defer func() {
		_ = closeLog()
	}()
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat, "file", cfg.LogFile)

	if err := run(cfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	vectorStore, closeStore, err := openVectorStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)
	if _, err := embedder.EmbedTexts(ctx, []string{"test"}); err != nil {
		return fmt.Errorf("failed to validate embedding client: %w", err)
	}
	slog.Info("Embedding client validated", "model", cfg.EmbeddingModelName, "vector_size", cfg.VectorSize)

	generator, err := newGenerator(cfg)
	if err != nil {
		return err
	}

	// Load the tokenizer before serving so no request waits on its download.
	tokenizerCtx, cancelTokenizer := context.WithTimeout(ctx, tokenizerLoadTimeout)
	tokens := llm.NewTiktokenCounter(tokenizerCtx, cfg.TokenizerEncoding)
	cancelTokenizer()
	slog.Info("Tokenizer configured", "encoding", cfg.TokenizerEncoding, "loaded", tokens.Loaded())

	ragEngine := rag.NewEngine(
		embedder,
		vectorStore,
		cfg.Collection(),
		generator,
		tokens,
	)
	slog.Info("RAG engine initialized", "provider", cfg.LLMProvider, "model", cfg.LLMModelName)

	answerService := service.NewAnswerService(
		ragEngine,
		storage.NewUserRepo(db),
		storage.NewSourceRepo(db),
		storage.NewChatRepo(db),
		cfg.EngineConfig(),
		cfg.CreditsPerQuery,
	)

	router := http.NewRouter(&http.Deps{
		AnswerService: answerService,
		VectorStore:   vectorStore,
		Collection:    cfg.Collection(),
		DB:            db,
	})

	// Generation can take up to LLM_TIMEOUT; the write timeout leaves room for it.
	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.LLMTimeout + 30*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", server.Addr)
		slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down API server: %w", err)
	}
	return nil
}

// openVectorStore connects to the configured vector index and makes sure the
// transcript collection or table exists.
func openVectorStore(ctx context.Context, cfg *config.Config) (vectorstore.VectorStore, func(), error) {
	switch cfg.VectorBackend {
	case config.BackendPGVector:
		store, err := vectorstore.NewPGVectorStore(ctx, cfg.PGVectorDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to pgvector: %w", err)
		}
		if err := store.EnsureTable(ctx, cfg.PGVectorTable, cfg.VectorSize); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("failed to ensure pgvector table: %w", err)
		}
		slog.Info("pgvector table ready", "table", cfg.PGVectorTable, "vector_size", cfg.VectorSize)
		return store, store.Close, nil

	default:
		store, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Qdrant client: %w", err)
		}
		// Ensure collection exists with correct vector size
		if err := store.EnsureCollection(ctx, cfg.QdrantCollection, cfg.VectorSize); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to ensure Qdrant collection: %w", err)
		}
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.VectorSize)
		return store, func() { _ = store.Close() }, nil
	}
}

// newGenerator returns the answer generation client for LLM_PROVIDER.
func newGenerator(cfg *config.Config) (rag.LLMClient, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI, config.ProviderOllama:
		model, err := llm.NewLangChainModel(cfg.LLMProvider, cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s model: %w", cfg.LLMProvider, err)
		}
		return model, nil
	default:
		return llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName), nil
	}
}
