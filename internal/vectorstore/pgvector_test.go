package vectorstore

import (
	"context"
	"strings"
	"testing"
)

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		table    string
		scoped   bool
		contains []string
		excludes []string
	}{
		{
			name:   "scoped",
			table:  "transcript_chunks",
			scoped: true,
			contains: []string{
				`FROM "transcript_chunks"`,
				"1 - (embedding <=> $1) AS score",
				"video_id = ANY($3)",
				"ORDER BY embedding <=> $1 LIMIT $2",
			},
		},
		{
			name:     "unscoped",
			table:    "transcript_chunks",
			contains: []string{"LIMIT $2"},
			excludes: []string{"$3"},
		},
		{
			name:     "table name is quoted",
			table:    `chunks"; DROP TABLE users; --`,
			contains: []string{`FROM "chunks""; DROP TABLE users; --"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSearchQuery(tt.table, tt.scoped)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("query %q missing %q", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("query %q should not contain %q", got, unwanted)
				}
			}
		})
	}
}

func TestSchemaStatements(t *testing.T) {
	stmts := schemaStatements("transcript_chunks", 384)
	if len(stmts) != 3 {
		t.Fatalf("len(stmts) = %d, want 3", len(stmts))
	}
	if !strings.Contains(stmts[1], "embedding vector(384)") {
		t.Errorf("table statement missing vector size: %s", stmts[1])
	}
	if !strings.Contains(stmts[2], `"transcript_chunks_video_id_idx"`) {
		t.Errorf("index statement = %s", stmts[2])
	}
}

func TestPGVectorStore_Search_Validation(t *testing.T) {
	store := &PGVectorStore{}
	ctx := context.Background()

	tests := []struct {
		name    string
		query   []float32
		k       int
		filters map[string]any
	}{
		{name: "zero k", query: []float32{1}, k: 0},
		{name: "empty vector", query: nil, k: 5},
		{name: "unknown filter", query: []float32{1}, k: 5, filters: map[string]any{"channel_id": 1}},
		{name: "bad filter type", query: []float32{1}, k: 5, filters: map[string]any{"video_id": 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Search(ctx, "transcript_chunks", tt.query, tt.k, tt.filters); err == nil {
				t.Error("Search() expected validation error")
			}
		})
	}
}

func TestStringValues(t *testing.T) {
	got, err := stringValues([]any{"a", "b"})
	if err != nil || len(got) != 2 || got[1] != "b" {
		t.Errorf("stringValues([]any) = %v, %v", got, err)
	}
	if _, err := stringValues([]any{"a", 1}); err == nil {
		t.Error("stringValues() expected error for mixed list")
	}
}
