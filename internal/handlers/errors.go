package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"transcript-rag/internal/contextutil"
	"transcript-rag/internal/rag"
	"transcript-rag/internal/service"
)

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleServiceError maps service and engine errors to HTTP status codes and responses.
func handleServiceError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	status, msg := statusForError(err, defaultMsg)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "request failed", "status", status, "error", err)
	} else {
		logger.WarnContext(ctx, "request rejected", "status", status, "error", err)
	}
	writeError(w, status, msg)
}

func statusForError(err error, defaultMsg string) (int, string) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, "Validation error: " + validationErr.Error()
	}

	var retrievalErr *rag.RetrievalError
	if errors.As(err, &retrievalErr) {
		switch retrievalErr.Op {
		case "scope":
			return http.StatusBadRequest, "No videos selected"
		case "question":
			return http.StatusBadRequest, "Question is required"
		}
		return http.StatusServiceUnavailable, "Vector store unavailable"
	}

	var synthesisErr *rag.SynthesisError
	if errors.As(err, &synthesisErr) {
		if synthesisErr.Timeout {
			return http.StatusBadGateway, "Answer generation timed out"
		}
		return http.StatusBadGateway, "External service error"
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid input"
	case errors.Is(err, service.ErrSourceNotReady):
		return http.StatusBadRequest, "Source is still processing"
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, service.ErrInsufficientCredits):
		return http.StatusPaymentRequired, "Insufficient credits"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "Access denied"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, service.ErrExternalService):
		return http.StatusBadGateway, "External service error"
	}
	return http.StatusInternalServerError, defaultMsg
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, ctx context.Context, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
