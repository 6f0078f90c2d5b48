package llm

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/pkoukk/tiktoken-go"
)

// getEncoding loads a tiktoken encoding. The first load of an encoding may download its BPE
// file without a deadline.
var getEncoding = tiktoken.GetEncoding

// EstimateCounter approximates token counts as one token per four bytes.
type EstimateCounter struct{}

// Count returns the estimated number of tokens in text.
func (EstimateCounter) Count(text string) int {
	return (len(text) + 3) / 4
}

// TiktokenCounter counts tokens with a tiktoken encoding. Until the encoding is loaded, and
// for good if it cannot be loaded, counts come from EstimateCounter. Count never blocks.
type TiktokenCounter struct {
	encoding string
	enc      atomic.Pointer[tiktoken.Tiktoken]
}

// NewTiktokenCounter starts loading encoding (for example "cl100k_base") and waits for it
// until ctx is done. A load still running when ctx ends keeps going in the background and
// upgrades the counter when it finishes.
func NewTiktokenCounter(ctx context.Context, encoding string) *TiktokenCounter {
	c := &TiktokenCounter{encoding: encoding}

	load := getEncoding
	done := make(chan struct{})
	go func() {
		defer close(done)
		enc, err := load(encoding)
		if err != nil {
			slog.Warn("tiktoken encoding unavailable, estimating token counts", "encoding", encoding, "error", err)
			return
		}
		c.enc.Store(enc)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		slog.Warn("tiktoken encoding still loading, estimating token counts meanwhile", "encoding", encoding, "error", ctx.Err())
	}
	return c
}

// Loaded reports whether the tiktoken encoding is in use.
func (c *TiktokenCounter) Loaded() bool {
	return c.enc.Load() != nil
}

// Count returns the number of tokens in text.
func (c *TiktokenCounter) Count(text string) int {
	enc := c.enc.Load()
	if enc == nil {
		return EstimateCounter{}.Count(text)
	}
	return len(enc.Encode(text, nil, nil))
}
