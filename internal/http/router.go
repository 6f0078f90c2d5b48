package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"transcript-rag/internal/handlers"
	"transcript-rag/internal/service"
	"transcript-rag/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	AnswerService service.AnswerService
	VectorStore   vectorstore.VectorStore
	// Collection is the Qdrant collection or pgvector table the health check probes.
	Collection string
	// DB is pinged by the health check when set.
	DB handlers.Pinger
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(UserIdentity)

	askHandler := handlers.NewAskHandler(deps.AnswerService)
	chatHistoryHandler := handlers.NewChatHistoryHandler(deps.AnswerService)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Collection, deps.DB)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Route("/v1", func(r chi.Router) {
			r.Method(http.MethodPost, "/ask", askHandler)
			r.Method(http.MethodGet, "/chats/{chatID}/messages", chatHistoryHandler)
		})
	})

	return r
}
