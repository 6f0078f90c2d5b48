package storage

import "time"

// Source processing states. Only ready sources can be queried.
const (
	SourceStatusPending    = "pending"
	SourceStatusProcessing = "processing"
	SourceStatusReady      = "ready"
	SourceStatusFailed     = "failed"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// User is an account with a prepaid query credit balance.
type User struct {
	ID        string // UUID
	Username  string
	Credits   int
	CreatedAt time.Time
}

// Source is a named set of videos a user has ingested.
type Source struct {
	ID        string   // UUID
	UserID    string   // Owner, foreign key to users.id
	Name      string
	VideoIDs  []string // Stored as a JSON array
	Status    string   // One of the SourceStatus constants
	CreatedAt time.Time
}

// Chat is a conversation over a source.
type Chat struct {
	ID        string // UUID
	UserID    string
	SourceID  string // Empty when the chat was not started from a source
	Title     string
	CreatedAt time.Time
}

// Message is one turn of a chat. Assistant content is the JSON-encoded answer.
type Message struct {
	ID        string // UUID
	ChatID    string
	Role      string
	Content   string
	CreatedAt time.Time
}
