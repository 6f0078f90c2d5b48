package handlers

import (
	"encoding/json"
	"net/http"

	"transcript-rag/internal/contextutil"
	"transcript-rag/internal/rag"
	"transcript-rag/internal/service"
)

// AskHandler handles HTTP requests for transcript questions.
type AskHandler struct {
	answerService service.AnswerService
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(answerService service.AnswerService) *AskHandler {
	return &AskHandler{
		answerService: answerService,
	}
}

// AskRequest represents the HTTP request payload for a question.
// Either source_id or video_ids selects the videos to search.
//
// swagger:model AskRequest
type AskRequest struct {
	Question string   `json:"question"`
	SourceID string   `json:"source_id,omitempty"`
	VideoIDs []string `json:"video_ids,omitempty"`
	ChatID   string   `json:"chat_id,omitempty"`
	TopK     int      `json:"top_k,omitempty"`
	Model    string   `json:"model,omitempty"`
}

// AskResponse represents the HTTP response payload for a question.
//
// swagger:model AskResponse
type AskResponse struct {
	// Answer paragraphs in generation order, each linked to a moment in a video
	Response []ParagraphResponse `json:"response"`

	// Citation of the first paragraph, null when there is no answer
	PrimarySource *CitationResponse `json:"primary_source"`

	// Cited video ids in first-seen order
	UniqueSources []string `json:"unique_sources"`

	VideosReferenced int `json:"videos_referenced"`
	TotalParagraphs  int `json:"total_paragraphs"`

	// NoResults is set when nothing relevant was found; no credits are charged.
	NoResults bool   `json:"no_results"`
	Message   string `json:"message,omitempty"`

	ModelUsed        string `json:"model_used,omitempty"`
	ChatID           string `json:"chat_id,omitempty"`
	CreditsRemaining int    `json:"credits_remaining"`
	ChunksRetrieved  int    `json:"chunks_retrieved"`
	ChunksUsed       int    `json:"chunks_used"`
}

// ParagraphResponse is one block of the answer.
//
// swagger:model ParagraphResponse
type ParagraphResponse struct {
	Text     string           `json:"text"`
	Citation CitationResponse `json:"citation"`
}

// CitationResponse points at a moment in a video.
//
// swagger:model CitationResponse
type CitationResponse struct {
	VideoID string `json:"video_id"`
	// Offset into the video in whole seconds
	Timestamp int `json:"timestamp"`
	// Timestamp rendered as M:SS or H:MM:SS
	FormattedTime string `json:"formatted_time"`
	YouTubeLink   string `json:"youtube_link"`
	// Transcript text the citation resolved to
	Text string `json:"text"`
}

// ServeHTTP handles HTTP requests for transcript questions.
//
// Ask a question about a set of YouTube videos. Every answer paragraph is linked to
// the moment in a video that supports it. One credit is charged per answered question.
//
// swagger:route POST /api/v1/ask askQuestion
//
// # Ask a question about videos
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// parameters:
//   - in: body
//     name: body
//     required: true
//     schema:
//     "$ref": "#/definitions/AskRequest"
//   - in: header
//     name: X-User-ID
//     type: string
//     required: true
//
// responses:
//
//	'200':
//	  description: Answer with citations, or a no_results response
//	  schema:
//	    "$ref": "#/definitions/AskResponse"
//	'400':
//	  description: Invalid question or scope
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'401':
//	  description: Missing user identity
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'402':
//	  description: No credits left
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'403':
//	  description: Source or chat belongs to another user
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'404':
//	  description: User, source or chat not found
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: Answer generation failed
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'503':
//	  description: Vector store or embedding service unavailable
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	svcResp, err := h.answerService.Ask(ctx, service.AskRequest{
		Question: req.Question,
		SourceID: req.SourceID,
		VideoIDs: req.VideoIDs,
		ChatID:   req.ChatID,
		TopK:     req.TopK,
		Model:    req.Model,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to answer question")
		return
	}

	writeJSON(w, ctx, http.StatusOK, toAskResponse(svcResp))
}

func toAskResponse(svcResp *service.AskResponse) AskResponse {
	paragraphs := make([]ParagraphResponse, len(svcResp.Paragraphs))
	for i, p := range svcResp.Paragraphs {
		paragraphs[i] = ParagraphResponse{
			Text:     p.Text,
			Citation: toCitationResponse(p.Citation),
		}
	}

	var primary *CitationResponse
	if svcResp.PrimarySource != nil {
		c := toCitationResponse(*svcResp.PrimarySource)
		primary = &c
	}

	uniqueSources := svcResp.UniqueSources
	if uniqueSources == nil {
		uniqueSources = []string{}
	}

	return AskResponse{
		Response:         paragraphs,
		PrimarySource:    primary,
		UniqueSources:    uniqueSources,
		VideosReferenced: svcResp.VideosReferenced,
		TotalParagraphs:  svcResp.TotalParagraphs,
		NoResults:        svcResp.NoResults,
		Message:          svcResp.Message,
		ModelUsed:        svcResp.ModelUsed,
		ChatID:           svcResp.ChatID,
		CreditsRemaining: svcResp.CreditsRemaining,
		ChunksRetrieved:  svcResp.ChunksRetrieved,
		ChunksUsed:       svcResp.ChunksUsed,
	}
}

func toCitationResponse(c rag.Citation) CitationResponse {
	return CitationResponse{
		VideoID:       c.SourceID,
		Timestamp:     c.Timestamp,
		FormattedTime: c.FormattedTime,
		YouTubeLink:   c.WatchLink,
		Text:          c.TextSnippet,
	}
}
