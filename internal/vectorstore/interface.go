package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks transcript-rag/internal/vectorstore VectorStore

import (
	"context"
	"fmt"
)

// SearchResult represents a search result from vector search.
// Meta carries the chunk payload (video_id, start_time, end_time, text).
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the read side of the transcript chunk index.
type VectorStore interface {
	// Search performs a similarity search with optional equality filters.
	// A filter value may be a single value or a []string matching any of its members.
	Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error)

	// CollectionExists reports whether the collection (or table) is present.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}

// stringValues normalizes a filter value into a list of strings.
func stringValues(v any) ([]string, error) {
	switch val := v.(type) {
	case string:
		return []string{val}, nil
	case []string:
		return val, nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("unsupported filter element type %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported filter type %T", v)
	}
}
