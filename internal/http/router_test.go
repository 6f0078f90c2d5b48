package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"transcript-rag/internal/contextutil"
	"transcript-rag/internal/service"
	servicemocks "transcript-rag/internal/service/mocks"
	"transcript-rag/internal/storage"
	vectorstoremocks "transcript-rag/internal/vectorstore/mocks"

	"go.uber.org/mock/gomock"
)

func newTestRouter(t *testing.T) (http.Handler, *servicemocks.MockAnswerService, *vectorstoremocks.MockVectorStore) {
	ctrl := gomock.NewController(t)
	answerService := servicemocks.NewMockAnswerService(ctrl)
	vectorStore := vectorstoremocks.NewMockVectorStore(ctrl)

	router := NewRouter(&Deps{
		AnswerService: answerService,
		VectorStore:   vectorStore,
		Collection:    "youtube-transcripts",
	})
	return router, answerService, vectorStore
}

func TestNewRouter(t *testing.T) {
	router, _, _ := newTestRouter(t)
	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		mockSetup  func(*servicemocks.MockAnswerService, *vectorstoremocks.MockVectorStore)
		wantStatus int
	}{
		{
			name:   "GET /api/health",
			method: http.MethodGet,
			path:   "/api/health",
			mockSetup: func(_ *servicemocks.MockAnswerService, vs *vectorstoremocks.MockVectorStore) {
				vs.EXPECT().CollectionExists(gomock.Any(), "youtube-transcripts").Return(true, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/v1/ask exists",
			method:     http.MethodPost,
			path:       "/api/v1/ask",
			wantStatus: http.StatusBadRequest, // Bad request due to empty body, but route exists
		},
		{
			name:       "GET /api/v1/ask method not allowed",
			method:     http.MethodGet,
			path:       "/api/v1/ask",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:   "GET chat messages",
			method: http.MethodGet,
			path:   "/api/v1/chats/chat-1/messages",
			mockSetup: func(as *servicemocks.MockAnswerService, _ *vectorstoremocks.MockVectorStore) {
				as.EXPECT().ChatMessages(gomock.Any(), "chat-1").Return([]storage.Message{}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/v1/unknown",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, answerService, vectorStore := newTestRouter(t)
			if tt.mockSetup != nil {
				tt.mockSetup(answerService, vectorStore)
			}

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_PassesUserIdentity(t *testing.T) {
	router, answerService, _ := newTestRouter(t)

	answerService.EXPECT().
		Ask(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req service.AskRequest) (*service.AskResponse, error) {
			if got := contextutil.UserIDFromContext(ctx); got != "user-7" {
				t.Errorf("user id = %q, want user-7", got)
			}
			return nil, service.ErrInsufficientCredits
		})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{"question":"q","video_ids":["v1"]}`))
	req.Header.Set(UserIDHeader, "user-7")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusPaymentRequired {
		t.Errorf("status = %v, want %v", w.Code, http.StatusPaymentRequired)
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// Check CORS headers are present
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Router should apply CORS middleware")
	}
}

func TestRouter_RecoversFromPanic(t *testing.T) {
	router, answerService, _ := newTestRouter(t)
	answerService.EXPECT().ChatMessages(gomock.Any(), "chat-1").DoAndReturn(
		func(context.Context, string) ([]storage.Message, error) {
			panic("boom")
		})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chats/chat-1/messages", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %v, want %v", w.Code, http.StatusInternalServerError)
	}
}
