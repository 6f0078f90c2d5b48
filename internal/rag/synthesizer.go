package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks transcript-rag/internal/rag LLMClient

import (
	"context"
	"errors"
	"time"

	"transcript-rag/internal/contextutil"
	"transcript-rag/internal/llm"
)

// LLMClient is the generation provider as seen by the pipeline.
type LLMClient interface {
	// ChatWithMessages sends a conversation and returns the completion text.
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// TokenCounter estimates the token size of a prompt.
type TokenCounter interface {
	Count(text string) int
}

// Synthesizer wraps one generation call.
type Synthesizer struct {
	client LLMClient
	tokens TokenCounter
}

// NewSynthesizer creates a Synthesizer. tokens may be nil, in which case prompt sizes are
// logged as estimates.
func NewSynthesizer(client LLMClient, tokens TokenCounter) *Synthesizer {
	if tokens == nil {
		tokens = llm.EstimateCounter{}
	}
	return &Synthesizer{
		client: client,
		tokens: tokens,
	}
}

// Synthesize sends the prompt and returns the raw completion. An empty completion is not an
// error. Transport failures, timeouts and cancellation are returned as *SynthesisError and
// are not retried. A caller cancelling before dispatch prevents the call entirely; a result
// arriving after cancellation is discarded.
func (s *Synthesizer) Synthesize(ctx context.Context, prompt Prompt, cfg Config) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)
	cfg = cfg.WithDefaults()

	if err := ctx.Err(); err != nil {
		logger.InfoContext(ctx, "request cancelled before generation", "error", err)
		return "", &SynthesisError{Model: cfg.ModelID, Err: err}
	}

	callCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: prompt.System},
		{Role: llm.RoleUser, Content: prompt.User},
	}

	logger.InfoContext(ctx, "sending request to LLM",
		"model", cfg.ModelID,
		"system_prompt_length", len(prompt.System),
		"user_message_length", len(prompt.User),
		"prompt_tokens", s.tokens.Count(prompt.System)+s.tokens.Count(prompt.User),
		"max_tokens", cfg.MaxOutputTokens,
	)

	start := time.Now()
	answer, err := s.client.ChatWithMessages(callCtx, messages, llm.ChatParams{
		Model:       cfg.ModelID,
		MaxTokens:   cfg.MaxOutputTokens,
		Temperature: cfg.Temperature,
	})
	elapsed := time.Since(start)

	if err != nil {
		timedOut := errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded)
		logger.ErrorContext(ctx, "failed to get LLM response", "model", cfg.ModelID, "timeout", timedOut, "elapsed", elapsed, "error", err)
		return "", &SynthesisError{Model: cfg.ModelID, Timeout: timedOut, Err: err}
	}
	if err := ctx.Err(); err != nil {
		logger.InfoContext(ctx, "discarding LLM response after cancellation", "elapsed", elapsed)
		return "", &SynthesisError{Model: cfg.ModelID, Err: err}
	}

	logger.InfoContext(ctx, "received LLM response", "answer_length", len(answer), "elapsed", elapsed)
	logger.DebugContext(ctx, "LLM answer", "answer", answer)
	return answer, nil
}
