package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"transcript-rag/internal/rag"
)

// Vector index backends.
const (
	BackendQdrant   = "qdrant"
	BackendPGVector = "pgvector"
)

// Generation providers.
const (
	ProviderHTTP   = "http"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort   string     `env:"API_PORT" validate:"required,numeric"`
	DBPath    string     `env:"DB_PATH" validate:"required"`
	LogLevel  slog.Level `env:"LOG_LEVEL"`
	LogFormat string     `env:"LOG_FORMAT" validate:"oneof=text json"`
	LogFile   string     `env:"LOG_FILE"`

	LLMProvider    string        `env:"LLM_PROVIDER" validate:"oneof=http openai ollama"`
	LLMBaseURL     string        `env:"LLM_BASE_URL" validate:"required,url"`
	LLMAPIKey      string        `env:"LLM_API_KEY"`
	LLMModelName   string        `env:"LLM_MODEL" validate:"required"`
	LLMMaxTokens   int           `env:"LLM_MAX_TOKENS" validate:"gt=0"`
	LLMTemperature float32       `env:"LLM_TEMPERATURE" validate:"gte=0,lte=2"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT" validate:"gte=0"`

	EmbeddingBaseURL   string `env:"EMBEDDING_BASE_URL" validate:"required,url"`
	EmbeddingModelName string `env:"EMBEDDING_MODEL_NAME" validate:"required"`
	// VectorSize must match the embedding model's output size and the index.
	VectorSize int `env:"VECTOR_SIZE" validate:"gt=0"`

	VectorBackend    string `env:"VECTOR_BACKEND" validate:"oneof=qdrant pgvector"`
	QdrantURL        string `env:"QDRANT_URL" validate:"omitempty,url"`
	QdrantCollection string `env:"QDRANT_COLLECTION" validate:"required_if=VectorBackend qdrant"`
	PGVectorDSN      string `env:"PGVECTOR_DSN" validate:"required_if=VectorBackend pgvector"`
	PGVectorTable    string `env:"PGVECTOR_TABLE" validate:"required_if=VectorBackend pgvector"`

	TopK              int     `env:"TOP_K_RESULTS" validate:"gt=0"`
	OverlapThreshold  float64 `env:"OVERLAP_THRESHOLD" validate:"gt=0,lte=1"`
	MinKeptChunks     int     `env:"MIN_KEPT_CHUNKS" validate:"gt=0"`
	MaxParagraphs     int     `env:"MAX_PARAGRAPHS" validate:"gt=0"`
	CitationMarker    string  `env:"CITATION_MARKER" validate:"contains=%s"`
	RequireQuotes     bool    `env:"REQUIRE_QUOTES"`
	SnippetLength     int     `env:"SNIPPET_LENGTH"`
	WatchURLBase      string  `env:"WATCH_URL_BASE" validate:"required,url"`
	CreditsPerQuery   int     `env:"CREDITS_PER_QUERY" validate:"gte=1"`
	TokenizerEncoding string  `env:"TOKENIZER_ENCODING"`
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		APIPort:   getEnv("API_PORT", "9000"),
		DBPath:    getEnv("DB_PATH", "./data/transcript-rag.db"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		LogFile:   getEnv("LOG_FILE", ""),

		LLMProvider:  strings.ToLower(getEnv("LLM_PROVIDER", ProviderHTTP)),
		LLMBaseURL:   getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMAPIKey:    getEnv("LLM_API_KEY", ""),
		LLMModelName: getEnv("LLM_MODEL", rag.DefaultModelID),

		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "all-MiniLM-L6-v2"),

		VectorBackend:    strings.ToLower(getEnv("VECTOR_BACKEND", BackendQdrant)),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "youtube-transcripts"),
		PGVectorDSN:      getEnv("PGVECTOR_DSN", ""),
		PGVectorTable:    getEnv("PGVECTOR_TABLE", "transcript_chunks"),

		CitationMarker:    getEnv("CITATION_MARKER", rag.DefaultCitationMarker),
		WatchURLBase:      getEnv("WATCH_URL_BASE", rag.DefaultWatchURLBase),
		TokenizerEncoding: getEnv("TOKENIZER_ENCODING", "cl100k_base"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error: %w", err)
	}

	// VECTOR_SIZE has no default: it must match the embedding model.
	vectorSizeStr := getEnv("VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("VECTOR_SIZE is required")
	}

	var err error
	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"VECTOR_SIZE", 0, &cfg.VectorSize},
		{"LLM_MAX_TOKENS", rag.DefaultMaxOutputTokens, &cfg.LLMMaxTokens},
		{"TOP_K_RESULTS", rag.DefaultTopK, &cfg.TopK},
		{"MIN_KEPT_CHUNKS", rag.DefaultMinKeptChunks, &cfg.MinKeptChunks},
		{"MAX_PARAGRAPHS", rag.DefaultMaxParagraphs, &cfg.MaxParagraphs},
		{"SNIPPET_LENGTH", rag.DefaultSnippetLength, &cfg.SnippetLength},
		{"CREDITS_PER_QUERY", 1, &cfg.CreditsPerQuery},
	}
	for _, v := range ints {
		if *v.dst, err = getEnvInt(v.key, v.def); err != nil {
			return nil, err
		}
	}

	temperature, err := getEnvFloat("LLM_TEMPERATURE", rag.DefaultTemperature)
	if err != nil {
		return nil, err
	}
	cfg.LLMTemperature = float32(temperature)

	if cfg.OverlapThreshold, err = getEnvFloat("OVERLAP_THRESHOLD", rag.DefaultOverlapThreshold); err != nil {
		return nil, err
	}
	if cfg.RequireQuotes, err = getEnvBool("REQUIRE_QUOTES", true); err != nil {
		return nil, err
	}
	if cfg.LLMTimeout, err = getEnvDuration("LLM_TIMEOUT", rag.DefaultTimeout); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Create the database directory if it doesn't exist
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

var validate = newValidator()

// newValidator reports env var names in validation errors.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("env")
	})
	return v
}

// Validate checks field constraints and reports every violation by env var name.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		if e.Tag() == "required" || e.Tag() == "required_if" {
			msgs = append(msgs, fmt.Sprintf("%s is required", e.Field()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s' tag (value %v)", e.Field(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// Collection returns the Qdrant collection or pgvector table holding transcript chunks.
func (c *Config) Collection() string {
	if c.VectorBackend == BackendPGVector {
		return c.PGVectorTable
	}
	return c.QdrantCollection
}

// EngineConfig returns the pipeline configuration requests start from.
func (c *Config) EngineConfig() rag.Config {
	return rag.Config{
		TopK:                   c.TopK,
		OverlapThreshold:       c.OverlapThreshold,
		MinKeptChunks:          c.MinKeptChunks,
		MaxParagraphs:          c.MaxParagraphs,
		CitationMarkerTemplate: c.CitationMarker,
		RequireQuotes:          c.RequireQuotes,
		ModelID:                c.LLMModelName,
		MaxOutputTokens:        c.LLMMaxTokens,
		Temperature:            c.LLMTemperature,
		Timeout:                c.LLMTimeout,
		SnippetLength:          c.SnippetLength,
		WatchURLBase:           c.WatchURLBase,
	}
}

// loadDotEnv loads the nearest .env file, checking the working directory and up to
// four parents. Missing files are ignored.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return // Reached filesystem root
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	s := getEnv(key, "")
	if s == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	s := getEnv(key, "")
	if s == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	s := getEnv(key, "")
	if s == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false: %w", key, err)
	}
	return v, nil
}

// getEnvDuration accepts a Go duration ("90s", "2m") or a plain number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	s := getEnv(key, "")
	if s == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration or a number of seconds: %w", key, err)
	}
	return v, nil
}
