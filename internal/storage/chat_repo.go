package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_store.go -package=mocks transcript-rag/internal/storage ChatStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChatStore defines the interface for chat history operations.
type ChatStore interface {
	// Create inserts a chat. A UUID is generated when chat.ID is empty.
	Create(ctx context.Context, chat *Chat) error
	// GetByID gets a chat by ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*Chat, error)
	// AddMessage appends a message to a chat. A UUID is generated when msg.ID is empty.
	AddMessage(ctx context.Context, msg *Message) error
	// ListMessages returns a chat's messages, oldest first.
	ListMessages(ctx context.Context, chatID string) ([]Message, error)
}

// ChatRepo provides methods for chat operations.
// It implements the ChatStore interface.
type ChatRepo struct {
	db *sql.DB
}

// NewChatRepo creates a new ChatRepo.
func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// Create inserts a chat.
func (r *ChatRepo) Create(ctx context.Context, chat *Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = time.Now().UTC()
	}

	var sourceID sql.NullString
	if chat.SourceID != "" {
		sourceID = sql.NullString{String: chat.SourceID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO chats (id, user_id, source_id, title, created_at) VALUES (?, ?, ?, ?, ?)",
		chat.ID, chat.UserID, sourceID, chat.Title, chat.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat: %w", err)
	}
	return nil
}

// GetByID gets a chat by ID. Returns ErrNotFound if not found.
func (r *ChatRepo) GetByID(ctx context.Context, id string) (*Chat, error) {
	var chat Chat
	var sourceID sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, source_id, title, created_at FROM chats WHERE id = ?",
		id,
	).Scan(&chat.ID, &chat.UserID, &sourceID, &chat.Title, &chat.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chat: %w", err)
	}
	chat.SourceID = sourceID.String
	return &chat, nil
}

// AddMessage appends a message to a chat.
func (r *ChatRepo) AddMessage(ctx context.Context, msg *Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO messages (id, chat_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)",
		msg.ID, msg.ChatID, msg.Role, msg.Content, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// ListMessages returns a chat's messages, oldest first.
// Returns an empty slice if the chat has no messages (not an error).
func (r *ChatRepo) ListMessages(ctx context.Context, chatID string) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, chat_id, role, content, created_at FROM messages WHERE chat_id = ? ORDER BY created_at, rowid",
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	messages := []Message{}
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return messages, nil
}
