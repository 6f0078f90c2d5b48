package rag

// Chunk is a scored, time-bounded transcript excerpt produced by retrieval.
type Chunk struct {
	// SourceID is the video the excerpt belongs to.
	SourceID string `json:"video_id"`
	// StartTime is the excerpt start, in seconds from the beginning of the video.
	StartTime float64 `json:"start_time"`
	// EndTime is the excerpt end, in seconds. Always greater than StartTime.
	EndTime float64 `json:"end_time"`
	// Text is the transcript text of the excerpt.
	Text string `json:"text"`
	// Score is the relevance score reported by the vector index, in [0,1].
	Score float64 `json:"score"`
}

// Duration returns the length of the chunk interval in seconds.
func (c Chunk) Duration() float64 {
	return c.EndTime - c.StartTime
}

// Group is one source's chunks in chronological order.
type Group struct {
	SourceID string
	Chunks   []Chunk
}

// MaxScore returns the best relevance score in the group.
func (g Group) MaxScore() float64 {
	var best float64
	for i, c := range g.Chunks {
		if i == 0 || c.Score > best {
			best = c.Score
		}
	}
	return best
}

// Citation points a paragraph at a moment in a video.
type Citation struct {
	// SourceID is the cited video.
	SourceID string `json:"video_id"`
	// Timestamp is the cited offset in whole seconds.
	Timestamp int `json:"timestamp"`
	// FormattedTime is Timestamp rendered as "M:SS" or "H:MM:SS".
	FormattedTime string `json:"formatted_time"`
	// WatchLink opens the video at Timestamp.
	WatchLink string `json:"youtube_link"`
	// TextSnippet is the (possibly truncated) text of the chunk the citation resolved to.
	TextSnippet string `json:"text"`
}

// Paragraph is one block of generated answer text with the evidence it routes to.
type Paragraph struct {
	Text     string   `json:"text"`
	Citation Citation `json:"citation"`
}

// AnswerResult is the outcome of one Answer call.
type AnswerResult struct {
	// Paragraphs are the answer blocks in generation order. Empty when NoResults is set.
	Paragraphs []Paragraph `json:"paragraphs"`
	// PrimarySource is the first paragraph's citation, nil when there are no paragraphs.
	PrimarySource *Citation `json:"primary_source"`
	// UniqueSources lists cited video ids in first-seen order.
	UniqueSources []string `json:"unique_sources"`
	// VideosReferenced is len(UniqueSources).
	VideosReferenced int `json:"videos_referenced"`
	// TotalParagraphs is len(Paragraphs).
	TotalParagraphs int `json:"total_paragraphs"`
	// NoResults is set when retrieval found nothing in scope and no generation call was made.
	NoResults bool `json:"no_results"`
	// ModelUsed is the generation model id, empty when NoResults is set.
	ModelUsed string `json:"model_used,omitempty"`
	// ChunksRetrieved is the number of chunks the vector index returned.
	ChunksRetrieved int `json:"chunks_retrieved"`
	// ChunksUsed is the number of chunks left after deduplication and rendered as context.
	ChunksUsed int `json:"chunks_used"`
}

// AnswerRequest is the input of Engine.Answer.
type AnswerRequest struct {
	// Question is the natural-language question to answer.
	Question string
	// Scope is the set of video ids retrieval is restricted to. Must not be empty.
	Scope []string
	// Config tunes the pipeline. Zero fields take DefaultConfig values.
	Config Config
}
