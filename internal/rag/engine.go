package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks transcript-rag/internal/rag Engine,Embedder

import (
	"context"
	"fmt"
	"strings"

	"transcript-rag/internal/contextutil"
	"transcript-rag/internal/vectorstore"
)

// Engine answers questions over transcript evidence.
type Engine interface {
	// Answer retrieves evidence within the scope, generates an answer and links every
	// paragraph to a moment in a video. The only failures are *RetrievalError and
	// *SynthesisError; a blank question is a *RetrievalError wrapping ErrEmptyQuestion.
	Answer(ctx context.Context, req AnswerRequest) (AnswerResult, error)
}

// Embedder turns text into query vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	embedder    Embedder
	retriever   *Retriever
	synthesizer *Synthesizer
}

// NewEngine creates a new RAG engine. tokens may be nil.
func NewEngine(
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	llmClient LLMClient,
	tokens TokenCounter,
) Engine {
	return &ragEngine{
		embedder:    embedder,
		retriever:   NewRetriever(vectorStore, collection),
		synthesizer: NewSynthesizer(llmClient, tokens),
	}
}

// Answer runs retrieval, deduplication, organization, prompting, generation, citation
// parsing and assembly in order. Zero retrieved chunks end the pipeline early with a
// NoResults result and no generation call.
func (e *ragEngine) Answer(ctx context.Context, req AnswerRequest) (AnswerResult, error) {
	logger := contextutil.LoggerFromContext(ctx)
	cfg := req.Config.WithDefaults()

	if strings.TrimSpace(req.Question) == "" {
		return AnswerResult{}, &RetrievalError{Op: "question", Err: ErrEmptyQuestion}
	}

	logger.InfoContext(ctx, "RAG query started",
		"question_length", len(req.Question),
		"scope_size", len(req.Scope),
		"top_k", cfg.TopK,
		"model", cfg.ModelID,
	)

	if len(req.Scope) == 0 {
		return AnswerResult{}, &RetrievalError{Op: "scope", Err: errEmptyScope}
	}

	embeddings, err := e.embedder.EmbedTexts(ctx, []string{req.Question})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed question", "error", err)
		return AnswerResult{}, &RetrievalError{Op: "embed", Err: err}
	}
	if len(embeddings) == 0 {
		return AnswerResult{}, &RetrievalError{Op: "embed", Err: fmt.Errorf("no embedding returned for question")}
	}

	retrieved, err := e.retriever.Retrieve(ctx, embeddings[0], req.Scope, cfg.TopK)
	if err != nil {
		return AnswerResult{}, err
	}
	if len(retrieved) == 0 {
		logger.InfoContext(ctx, "no chunks found in scope, skipping generation")
		return noResults(), nil
	}

	kept := Deduplicate(retrieved, cfg.OverlapThreshold, cfg.MinKeptChunks)
	groups := Organize(kept)
	contextText := RenderContext(groups)
	logger.InfoContext(ctx, "context formatted for LLM",
		"chunks_retrieved", len(retrieved),
		"chunks_kept", len(kept),
		"groups", len(groups),
		"context_length", len(contextText),
	)
	logger.DebugContext(ctx, "full context being sent to LLM", "context", contextText)

	prompt := BuildPrompt(contextText, req.Question, cfg)
	raw, err := e.synthesizer.Synthesize(ctx, prompt, cfg)
	if err != nil {
		return AnswerResult{}, err
	}

	paragraphs := ParseCitations(raw, kept, cfg)
	result := Assemble(paragraphs, cfg.ModelID)
	result.ChunksRetrieved = len(retrieved)
	result.ChunksUsed = len(kept)

	logger.InfoContext(ctx, "RAG query completed",
		"paragraphs", result.TotalParagraphs,
		"videos_referenced", result.VideosReferenced,
	)
	return result, nil
}
