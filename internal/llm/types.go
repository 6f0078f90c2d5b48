package llm

// Chat roles understood by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams holds per-call generation settings.
type ChatParams struct {
	// Model overrides the provider's default model when set.
	Model string

	// MaxTokens caps the completion length; 0 leaves it to the provider.
	MaxTokens int

	// Temperature is always sent, so 0 means deterministic output rather than unset.
	Temperature float32
}
