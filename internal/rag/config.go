package rag

import "time"

// Pipeline defaults.
const (
	DefaultTopK             = 15
	DefaultOverlapThreshold = 0.8
	DefaultMinKeptChunks    = 3
	DefaultMaxParagraphs    = 4
	DefaultCitationMarker   = "📺 [Watch at %s]"
	DefaultModelID          = "openrouter/auto"
	DefaultMaxOutputTokens  = 1000
	DefaultTemperature      = 0.7
	DefaultTimeout          = 60 * time.Second
	DefaultSnippetLength    = 200
	DefaultWatchURLBase     = "https://www.youtube.com/watch"
)

// Config is threaded explicitly through every stage of the pipeline.
type Config struct {
	// TopK is the number of chunks requested from the vector index.
	TopK int
	// OverlapThreshold rejects a chunk whose overlap fraction with an accepted same-source chunk exceeds it.
	OverlapThreshold float64
	// MinKeptChunks is the floor deduplication relaxes towards.
	MinKeptChunks int
	// MaxParagraphs caps the parsed answer; overflow is merged into the last kept paragraph.
	MaxParagraphs int
	// CitationMarkerTemplate is a fmt template with one %s for the timestamp.
	CitationMarkerTemplate string
	// RequireQuotes asks the generator to quote the transcript directly.
	RequireQuotes bool
	// ModelID selects the generation model.
	ModelID string
	// MaxOutputTokens caps the generated answer length.
	MaxOutputTokens int
	// Temperature is passed through to the generation provider.
	Temperature float32
	// Timeout bounds the generation call. Zero means no extra deadline.
	Timeout time.Duration
	// SnippetLength caps Citation.TextSnippet in runes. Negative disables the cap.
	SnippetLength int
	// WatchURLBase is the canonical watch URL citations link to.
	WatchURLBase string
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		TopK:                   DefaultTopK,
		OverlapThreshold:       DefaultOverlapThreshold,
		MinKeptChunks:          DefaultMinKeptChunks,
		MaxParagraphs:          DefaultMaxParagraphs,
		CitationMarkerTemplate: DefaultCitationMarker,
		RequireQuotes:          true,
		ModelID:                DefaultModelID,
		MaxOutputTokens:        DefaultMaxOutputTokens,
		Temperature:            DefaultTemperature,
		Timeout:                DefaultTimeout,
		SnippetLength:          DefaultSnippetLength,
		WatchURLBase:           DefaultWatchURLBase,
	}
}

// WithDefaults fills zero-valued fields from DefaultConfig.
// RequireQuotes, Temperature and Timeout are taken as given.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.TopK <= 0 {
		c.TopK = d.TopK
	}
	if c.OverlapThreshold <= 0 || c.OverlapThreshold > 1 {
		c.OverlapThreshold = d.OverlapThreshold
	}
	if c.MinKeptChunks <= 0 {
		c.MinKeptChunks = d.MinKeptChunks
	}
	if c.MaxParagraphs <= 0 {
		c.MaxParagraphs = d.MaxParagraphs
	}
	if c.CitationMarkerTemplate == "" {
		c.CitationMarkerTemplate = d.CitationMarkerTemplate
	}
	if c.ModelID == "" {
		c.ModelID = d.ModelID
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = d.MaxOutputTokens
	}
	if c.SnippetLength == 0 {
		c.SnippetLength = d.SnippetLength
	}
	if c.WatchURLBase == "" {
		c.WatchURLBase = d.WatchURLBase
	}
	return c
}
