package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"transcript-rag/internal/contextutil"
	"transcript-rag/internal/service"
)

// ChatHistoryHandler handles HTTP requests for a chat's stored messages.
type ChatHistoryHandler struct {
	answerService service.AnswerService
}

// NewChatHistoryHandler creates a new ChatHistoryHandler.
func NewChatHistoryHandler(answerService service.AnswerService) *ChatHistoryHandler {
	return &ChatHistoryHandler{
		answerService: answerService,
	}
}

// MessageResponse is one stored chat message. Assistant content is the JSON
// encoding of the answer paragraphs.
//
// swagger:model MessageResponse
type MessageResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// ChatHistoryResponse represents the HTTP response payload for chat history.
//
// swagger:model ChatHistoryResponse
type ChatHistoryResponse struct {
	ChatID   string            `json:"chat_id"`
	Messages []MessageResponse `json:"messages"`
}

// ServeHTTP handles HTTP requests for chat history.
//
// swagger:route GET /api/v1/chats/{chatID}/messages chatHistory
//
// # List the messages of a chat
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Messages, oldest first
//	  schema:
//	    "$ref": "#/definitions/ChatHistoryResponse"
//	'401':
//	  description: Missing user identity
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'403':
//	  description: Chat belongs to another user
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'404':
//	  description: Chat not found
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *ChatHistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	chatID := chi.URLParam(r, "chatID")
	if chatID == "" {
		writeError(w, http.StatusBadRequest, "Chat ID is required")
		return
	}

	messages, err := h.answerService.ChatMessages(ctx, chatID)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load chat history")
		return
	}

	resp := ChatHistoryResponse{
		ChatID:   chatID,
		Messages: make([]MessageResponse, len(messages)),
	}
	for i, m := range messages {
		resp.Messages[i] = MessageResponse{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	writeJSON(w, ctx, http.StatusOK, resp)
}
