package rag

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"

	"transcript-rag/internal/contextutil"
	"transcript-rag/internal/vectorstore"
)

// Payload keys written by the transcript ingestion pipeline.
const (
	payloadVideoID   = "video_id"
	payloadStartTime = "start_time"
	payloadEndTime   = "end_time"
	payloadText      = "text"
)

// Retriever fetches candidate chunks for a query embedding from the vector index.
type Retriever struct {
	store      vectorstore.VectorStore
	collection string
}

// NewRetriever creates a Retriever over the given collection.
func NewRetriever(store vectorstore.VectorStore, collection string) *Retriever {
	return &Retriever{
		store:      store,
		collection: collection,
	}
}

// Retrieve returns up to topK chunks from the scope, highest score first.
// An empty result is valid. Index failures and an empty scope are returned as *RetrievalError.
func (r *Retriever) Retrieve(ctx context.Context, embedding []float32, scope []string, topK int) ([]Chunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(scope) == 0 {
		return nil, &RetrievalError{Op: "scope", Err: errEmptyScope}
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	filters := map[string]any{
		payloadVideoID: slices.Clone(scope),
	}
	results, err := r.store.Search(ctx, r.collection, embedding, topK, filters)
	if err != nil {
		logger.ErrorContext(ctx, "vector search failed", "collection", r.collection, "scope_size", len(scope), "error", err)
		return nil, &RetrievalError{Op: "search", Err: err}
	}

	chunks := make([]Chunk, 0, len(results))
	for _, result := range results {
		chunk, err := chunkFromResult(result)
		if err != nil {
			logger.WarnContext(ctx, "skipping malformed search result", "point_id", result.PointID, "error", err)
			continue
		}
		chunks = append(chunks, chunk)
	}

	slices.SortStableFunc(chunks, compareByRelevance)
	if len(chunks) > topK {
		chunks = chunks[:topK]
	}

	logger.InfoContext(ctx, "retrieved chunks", "requested", topK, "returned", len(results), "usable", len(chunks))
	return chunks, nil
}

// chunkFromResult converts an index hit into a Chunk, enforcing end > start and a score in [0,1].
func chunkFromResult(result vectorstore.SearchResult) (Chunk, error) {
	videoID, _ := result.Meta[payloadVideoID].(string)
	if videoID == "" {
		return Chunk{}, fmt.Errorf("missing %s", payloadVideoID)
	}
	start, ok := toFloat(result.Meta[payloadStartTime])
	if !ok {
		return Chunk{}, fmt.Errorf("missing or invalid %s", payloadStartTime)
	}
	end, ok := toFloat(result.Meta[payloadEndTime])
	if !ok {
		return Chunk{}, fmt.Errorf("missing or invalid %s", payloadEndTime)
	}
	if end <= start {
		return Chunk{}, fmt.Errorf("empty interval [%v, %v]", start, end)
	}
	text, _ := result.Meta[payloadText].(string)

	return Chunk{
		SourceID:  videoID,
		StartTime: start,
		EndTime:   end,
		Text:      text,
		Score:     clampScore(float64(result.Score)),
	}, nil
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

func clampScore(score float64) float64 {
	switch {
	case math.IsNaN(score), score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}
