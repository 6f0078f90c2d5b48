package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_source_store.go -package=mocks transcript-rag/internal/storage SourceStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SourceStore defines the interface for source operations.
type SourceStore interface {
	// Create inserts a source. A UUID is generated when source.ID is empty.
	Create(ctx context.Context, source *Source) error
	// GetByID gets a source by ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*Source, error)
}

// SourceRepo provides methods for source operations.
// It implements the SourceStore interface.
type SourceRepo struct {
	db *sql.DB
}

// NewSourceRepo creates a new SourceRepo.
func NewSourceRepo(db *sql.DB) *SourceRepo {
	return &SourceRepo{db: db}
}

// Create inserts a source. Status defaults to pending.
func (r *SourceRepo) Create(ctx context.Context, source *Source) error {
	if source.ID == "" {
		source.ID = uuid.New().String()
	}
	if source.Status == "" {
		source.Status = SourceStatusPending
	}
	if source.VideoIDs == nil {
		source.VideoIDs = []string{}
	}
	if source.CreatedAt.IsZero() {
		source.CreatedAt = time.Now().UTC()
	}

	videoIDs, err := json.Marshal(source.VideoIDs)
	if err != nil {
		return fmt.Errorf("failed to encode video ids: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO sources (id, user_id, name, video_ids, status, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		source.ID, source.UserID, source.Name, string(videoIDs), source.Status, source.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert source: %w", err)
	}
	return nil
}

// GetByID gets a source by ID. Returns ErrNotFound if not found.
func (r *SourceRepo) GetByID(ctx context.Context, id string) (*Source, error) {
	var source Source
	var videoIDs string
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, video_ids, status, created_at FROM sources WHERE id = ?",
		id,
	).Scan(&source.ID, &source.UserID, &source.Name, &videoIDs, &source.Status, &source.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query source: %w", err)
	}

	if err := json.Unmarshal([]byte(videoIDs), &source.VideoIDs); err != nil {
		return nil, fmt.Errorf("failed to decode video ids for source %s: %w", id, err)
	}
	return &source, nil
}
