package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_answer_service.go -package=mocks transcript-rag/internal/service AnswerService

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"transcript-rag/internal/contextutil"
	"transcript-rag/internal/rag"
	"transcript-rag/internal/storage"
)

const (
	// MaxQuestionLength is the longest accepted question, in characters.
	MaxQuestionLength = 500
	// MaxTopK is the largest per-request top_k; values outside 1..MaxTopK use the configured default.
	MaxTopK           = 50

	chatTitleLength  = 50
	noResultsMessage = "No relevant content found in the selected videos. Try rephrasing your question or selecting different videos."
)

// AskRequest represents a question over a set of videos.
// Exactly one of SourceID or VideoIDs selects the scope; SourceID wins when both are set.
type AskRequest struct {
	Question string   `json:"question" validate:"required,max=500"`
	SourceID string   `json:"source_id"`
	VideoIDs []string `json:"video_ids" validate:"omitempty,dive,required"`
	ChatID   string   `json:"chat_id"`
	TopK     int      `json:"top_k"`
	Model    string   `json:"model"`
}

// AskResponse is an answer plus the bookkeeping around it.
type AskResponse struct {
	rag.AnswerResult
	// Message explains a NoResults answer.
	Message string
	// ChatID is the chat the exchange was stored in, empty when none was.
	ChatID string
	// CreditsRemaining is the caller's balance after the request.
	CreditsRemaining int
}

// AnswerService answers questions for authenticated users.
type AnswerService interface {
	// Ask resolves the scope, checks credits, runs the engine and records the exchange.
	Ask(ctx context.Context, req AskRequest) (*AskResponse, error)
	// ChatMessages returns the messages of a chat owned by the caller, oldest first.
	ChatMessages(ctx context.Context, chatID string) ([]storage.Message, error)
}

// answerService implements AnswerService.
type answerService struct {
	engine          rag.Engine
	users           storage.UserStore
	sources         storage.SourceStore
	chats           storage.ChatStore
	config          rag.Config
	creditsPerQuery int
}

// NewAnswerService creates a new AnswerService. cfg is the per-request engine configuration
// before request overrides; creditsPerQuery below 1 is treated as 1.
func NewAnswerService(
	engine rag.Engine,
	users storage.UserStore,
	sources storage.SourceStore,
	chats storage.ChatStore,
	cfg rag.Config,
	creditsPerQuery int,
) AnswerService {
	if creditsPerQuery < 1 {
		creditsPerQuery = 1
	}
	return &answerService{
		engine:          engine,
		users:           users,
		sources:         sources,
		chats:           chats,
		config:          cfg,
		creditsPerQuery: creditsPerQuery,
	}
}

var validate = newValidator()

// newValidator reports json field names in validation errors.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Ask answers one question.
func (s *answerService) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	userID := contextutil.UserIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	req.Question = strings.TrimSpace(req.Question)
	if err := validate.Struct(req); err != nil {
		logger.WarnContext(ctx, "invalid ask request", "error", err)
		return nil, fromValidator(err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "failed to get user")
	}
	if user.Credits < s.creditsPerQuery {
		logger.InfoContext(ctx, "ask rejected, not enough credits", "user_id", userID, "credits", user.Credits, "cost", s.creditsPerQuery)
		return nil, ErrInsufficientCredits
	}

	scope, err := s.resolveScope(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	if req.ChatID != "" {
		if _, err := s.ownedChat(ctx, userID, req.ChatID); err != nil {
			return nil, err
		}
	}

	cfg := s.config
	if req.TopK >= 1 && req.TopK <= MaxTopK {
		cfg.TopK = req.TopK
	}
	if req.Model != "" {
		cfg.ModelID = req.Model
	}

	result, err := s.engine.Answer(ctx, rag.AnswerRequest{
		Question: req.Question,
		Scope:    scope,
		Config:   cfg,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to answer question", "error", err)
		return nil, WrapError(err, "failed to answer question")
	}

	if result.NoResults {
		logger.InfoContext(ctx, "no relevant content in scope", "videos", len(scope))
		return &AskResponse{
			AnswerResult:     result,
			Message:          noResultsMessage,
			ChatID:           req.ChatID,
			CreditsRemaining: user.Credits,
		}, nil
	}

	resp := &AskResponse{
		AnswerResult:     result,
		CreditsRemaining: s.deductCredits(ctx, user),
	}
	resp.ChatID = s.recordExchange(ctx, userID, req, result)

	logger.InfoContext(ctx, "question answered",
		"paragraphs", result.TotalParagraphs,
		"videos_referenced", result.VideosReferenced,
		"credits_remaining", resp.CreditsRemaining,
	)
	return resp, nil
}

// ChatMessages returns a caller-owned chat's messages.
func (s *answerService) ChatMessages(ctx context.Context, chatID string) ([]storage.Message, error) {
	userID := contextutil.UserIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := s.ownedChat(ctx, userID, chatID); err != nil {
		return nil, err
	}

	messages, err := s.chats.ListMessages(ctx, chatID)
	if err != nil {
		return nil, WrapError(err, "failed to list messages")
	}
	return messages, nil
}

func (s *answerService) resolveScope(ctx context.Context, userID string, req AskRequest) ([]string, error) {
	if req.SourceID == "" {
		if len(req.VideoIDs) == 0 {
			return nil, &ValidationError{
				Field:   "source_id",
				Message: "either source_id or video_ids is required",
			}
		}
		return req.VideoIDs, nil
	}

	source, err := s.sources.GetByID(ctx, req.SourceID)
	if err != nil {
		return nil, storeError(err, "failed to get source")
	}
	if source.UserID != userID {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "source owned by another user", "source_id", source.ID)
		return nil, ErrForbidden
	}
	if source.Status != storage.SourceStatusReady {
		return nil, ErrSourceNotReady
	}
	return source.VideoIDs, nil
}

func (s *answerService) ownedChat(ctx context.Context, userID, chatID string) (*storage.Chat, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, storeError(err, "failed to get chat")
	}
	if chat.UserID != userID {
		return nil, ErrForbidden
	}
	return chat, nil
}

// deductCredits charges for a produced answer. A failed debit is logged and the
// balance is estimated, since the answer has already been generated.
func (s *answerService) deductCredits(ctx context.Context, user *storage.User) int {
	balance, err := s.users.AdjustCredits(ctx, user.ID, -s.creditsPerQuery)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to deduct credits", "user_id", user.ID, "error", err)
		return max(user.Credits-s.creditsPerQuery, 0)
	}
	return balance
}

// assistantContent is the stored form of an answer.
type assistantContent struct {
	Paragraphs    []rag.Paragraph `json:"paragraphs"`
	ModelUsed     string          `json:"model_used"`
	PrimarySource *rag.Citation   `json:"primary_source"`
}

// recordExchange stores the question and answer and returns the chat id, or "" when
// nothing was stored. Failures are logged only.
func (s *answerService) recordExchange(ctx context.Context, userID string, req AskRequest, result rag.AnswerResult) string {
	logger := contextutil.LoggerFromContext(ctx)

	chatID := req.ChatID
	if chatID == "" {
		if req.SourceID == "" {
			return ""
		}
		chat := &storage.Chat{
			UserID:   userID,
			SourceID: req.SourceID,
			Title:    chatTitle(req.Question),
		}
		if err := s.chats.Create(ctx, chat); err != nil {
			logger.ErrorContext(ctx, "failed to create chat", "error", err)
			return ""
		}
		chatID = chat.ID
	}

	content, err := json.Marshal(assistantContent{
		Paragraphs:    result.Paragraphs,
		ModelUsed:     result.ModelUsed,
		PrimarySource: result.PrimarySource,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to encode answer", "error", err)
		return chatID
	}

	messages := []*storage.Message{
		{ChatID: chatID, Role: storage.RoleUser, Content: req.Question},
		{ChatID: chatID, Role: storage.RoleAssistant, Content: string(content)},
	}
	for _, msg := range messages {
		if err := s.chats.AddMessage(ctx, msg); err != nil {
			logger.ErrorContext(ctx, "failed to store message", "chat_id", chatID, "role", msg.Role, "error", err)
			break
		}
	}
	return chatID
}

// chatTitle is the first chatTitleLength characters of the question.
func chatTitle(question string) string {
	runes := []rune(question)
	if len(runes) <= chatTitleLength {
		return question
	}
	return string(runes[:chatTitleLength]) + "..."
}

// storeError maps storage.ErrNotFound onto the service vocabulary.
func storeError(err error, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return WrapError(ErrNotFound, msg)
	}
	return WrapError(err, msg)
}
