package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"transcript-rag/internal/contextutil"
	"transcript-rag/internal/vectorstore"
)

const healthCheckTimeout = 5 * time.Second

var errCollectionMissing = errors.New("transcript collection does not exist")

// Pinger reports whether the chat and credit database is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports whether the transcript index and the database can serve questions.
type HealthHandler struct {
	vectorStore vectorstore.VectorStore
	collection  string
	db          Pinger
}

// NewHealthHandler creates a new HealthHandler. collection is the Qdrant collection or
// pgvector table holding transcript chunks. db may be nil, in which case it is not checked.
func NewHealthHandler(vectorStore vectorstore.VectorStore, collection string, db Pinger) *HealthHandler {
	return &HealthHandler{
		vectorStore: vectorStore,
		collection:  collection,
		db:          db,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall status: "healthy", "degraded" (history and credits unavailable) or "unhealthy"
	// (questions cannot be answered)
	Status string `json:"status"`

	// Time of the check, RFC3339
	Timestamp string `json:"timestamp"`

	// Per-dependency result, "ok" or "error"
	Checks map[string]string `json:"checks"`

	// Failed dependencies
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles GET /api/health.
//
// swagger:route GET /api/health healthCheck
//
// # Health check endpoint
//
// Checks that the transcript index exists and the database answers a ping.
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: All dependencies are available
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
//	'503':
//	  description: A dependency is unavailable
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    map[string]string{},
	}

	if err := h.checkIndex(checkCtx); err != nil {
		logger.WarnContext(ctx, "transcript index health check failed", "collection", h.collection, "error", err)
		response.Checks["transcript_index"] = "error"
		response.Issues = append(response.Issues, "transcript_index_unavailable")
		response.Status = "unhealthy"
	} else {
		response.Checks["transcript_index"] = "ok"
	}

	if h.db != nil {
		if err := h.db.PingContext(checkCtx); err != nil {
			logger.WarnContext(ctx, "database health check failed", "error", err)
			response.Checks["database"] = "error"
			response.Issues = append(response.Issues, "database_unavailable")
			if response.Status == "healthy" {
				response.Status = "degraded"
			}
		} else {
			response.Checks["database"] = "ok"
		}
	}

	status := http.StatusOK
	if response.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}

func (h *HealthHandler) checkIndex(ctx context.Context) error {
	exists, err := h.vectorStore.CollectionExists(ctx, h.collection)
	if err != nil {
		return err
	}
	if !exists {
		return errCollectionMissing
	}
	return nil
}
