package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"transcript-rag/internal/contextutil"
)

// pgvectorFilterColumn is the only filterable column of the chunk table.
const pgvectorFilterColumn = "video_id"

// PGVectorStore implements VectorStore on PostgreSQL with the pgvector extension.
// The collection name is the chunk table name.
type PGVectorStore struct {
	pool *pgxpool.Pool
}

// NewPGVectorStore connects to PostgreSQL and verifies the connection.
func NewPGVectorStore(ctx context.Context, dsn string) (*PGVectorStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PGVectorStore{pool: pool}, nil
}

// Search returns the k nearest chunks by cosine similarity, optionally restricted to video IDs.
func (s *PGVectorStore) Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	if len(query) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}

	var videoIDs []string
	for key, value := range filters {
		if key != pgvectorFilterColumn {
			return nil, fmt.Errorf("unsupported filter %q", key)
		}
		ids, err := stringValues(value)
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", key, err)
		}
		videoIDs = ids
	}

	sql := buildSearchQuery(collection, videoIDs != nil)
	args := []any{pgvector.NewVector(query), k}
	if videoIDs != nil {
		args = append(args, videoIDs)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search chunks", "table", collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	results := make([]SearchResult, 0, k)
	for rows.Next() {
		var (
			id        string
			videoID   string
			startTime float64
			endTime   float64
			text      string
			score     float64
		)
		if err := rows.Scan(&id, &videoID, &startTime, &endTime, &text, &score); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		results = append(results, SearchResult{
			PointID: id,
			Score:   float32(score),
			Meta: map[string]any{
				"video_id":   videoID,
				"start_time": startTime,
				"end_time":   endTime,
				"text":       text,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunks: %w", err)
	}

	logger.InfoContext(ctx, "search completed", "table", collection, "k", k, "results", len(results))
	return results, nil
}

// buildSearchQuery renders the similarity query. $1 is the query vector, $2 the limit and
// $3, when scoped, the video ID array.
func buildSearchQuery(table string, scoped bool) string {
	var b strings.Builder
	b.WriteString("SELECT id::text, video_id, start_time, end_time, text, 1 - (embedding <=> $1) AS score FROM ")
	b.WriteString(pgx.Identifier{table}.Sanitize())
	b.WriteString(" WHERE embedding IS NOT NULL")
	if scoped {
		b.WriteString(" AND video_id = ANY($3)")
	}
	b.WriteString(" ORDER BY embedding <=> $1 LIMIT $2")
	return b.String()
}

// CollectionExists reports whether the chunk table exists.
func (s *PGVectorStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", pgx.Identifier{collection}.Sanitize()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return exists, nil
}

// EnsureTable creates the vector extension, chunk table and index when missing.
func (s *PGVectorStore) EnsureTable(ctx context.Context, table string, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	for _, stmt := range schemaStatements(table, vectorSize) {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare chunk table: %w", err)
		}
	}

	logger.InfoContext(ctx, "chunk table ready", "table", table, "vector_size", vectorSize)
	return nil
}

func schemaStatements(table string, vectorSize int) []string {
	ident := pgx.Identifier{table}.Sanitize()
	index := pgx.Identifier{table + "_video_id_idx"}.Sanitize()
	return []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			video_id TEXT NOT NULL,
			start_time DOUBLE PRECISION NOT NULL,
			end_time DOUBLE PRECISION NOT NULL,
			text TEXT NOT NULL,
			embedding vector(%d)
		)`, ident, vectorSize),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(video_id)", index, ident),
	}
}

// Close closes the connection pool.
func (s *PGVectorStore) Close() {
	s.pool.Close()
}
