package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_user_store.go -package=mocks transcript-rag/internal/storage UserStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientCredits is returned when a debit would take a balance below zero.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// UserStore defines the interface for user and credit operations.
type UserStore interface {
	// Create inserts a user. A UUID is generated when user.ID is empty.
	Create(ctx context.Context, user *User) error
	// GetByID gets a user by ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*User, error)
	// AdjustCredits adds delta (negative to debit) to the balance and returns the new balance.
	// Returns ErrInsufficientCredits if the balance would go negative.
	AdjustCredits(ctx context.Context, id string, delta int) (int, error)
}

// UserRepo provides methods for user operations.
// It implements the UserStore interface.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a user. A UUID is generated when user.ID is empty.
func (r *UserRepo) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id, username, credits, created_at) VALUES (?, ?, ?, ?)",
		user.ID, user.Username, user.Credits, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByID gets a user by ID. Returns ErrNotFound if not found.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	var user User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, credits, created_at FROM users WHERE id = ?",
		id,
	).Scan(&user.ID, &user.Username, &user.Credits, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// AdjustCredits adds delta to the user's balance in a single statement, so concurrent
// debits cannot overdraw the account.
func (r *UserRepo) AdjustCredits(ctx context.Context, id string, delta int) (int, error) {
	var balance int
	err := r.db.QueryRowContext(ctx,
		"UPDATE users SET credits = credits + ? WHERE id = ? AND credits + ? >= 0 RETURNING credits",
		delta, id, delta,
	).Scan(&balance)

	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return 0, getErr
		}
		return 0, ErrInsufficientCredits
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust credits: %w", err)
	}
	return balance, nil
}
