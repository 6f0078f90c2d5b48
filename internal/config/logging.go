package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger builds the process logger from LOG_FORMAT and LOG_LEVEL, writing to stdout.
// When LOG_FILE is set, records are also written to that file as JSON.
// Returns the logger and a cleanup function to close the file.
func SetupLogger(cfg *Config) (*slog.Logger, func() error, error) {
	if cfg.LogFile == "" {
		return NewLogger(os.Stdout, nil, cfg.LogFormat, cfg.LogLevel), func() error { return nil }, nil
	}

	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", cfg.LogFile, err)
	}

	cleanup := func() error {
		return file.Close()
	}
	return NewLogger(os.Stdout, file, cfg.LogFormat, cfg.LogLevel), cleanup, nil
}

// NewLogger creates a logger writing format ("text" or "json") to out, fanned out
// to a JSON handler on file when file is not nil.
func NewLogger(out, file io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	if file == nil {
		return slog.New(handler)
	}

	// File handler (JSON for machine parsing)
	fileHandler := slog.NewJSONHandler(file, opts)
	return slog.New(slogmulti.Fanout(handler, fileHandler))
}
