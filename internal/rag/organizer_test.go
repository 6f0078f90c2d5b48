package rag

import (
	"testing"
)

func TestOrganize_SingleSourceChronological(t *testing.T) {
	chunks := []Chunk{
		{SourceID: "vid", StartTime: 40, EndTime: 50, Score: 0.9},
		{SourceID: "vid", StartTime: 0, EndTime: 10, Score: 0.5},
		{SourceID: "vid", StartTime: 80, EndTime: 90, Score: 0.7},
		{SourceID: "vid", StartTime: 20, EndTime: 30, Score: 0.6},
		{SourceID: "vid", StartTime: 60, EndTime: 70, Score: 0.8},
	}

	kept := Deduplicate(chunks, DefaultOverlapThreshold, DefaultMinKeptChunks)
	if len(kept) != 5 {
		t.Fatalf("Deduplicate() kept %d chunks, want 5", len(kept))
	}

	groups := Organize(kept)
	if len(groups) != 1 {
		t.Fatalf("Organize() returned %d groups, want 1", len(groups))
	}
	if len(groups[0].Chunks) != 5 {
		t.Fatalf("group has %d chunks, want 5", len(groups[0].Chunks))
	}
	for i := 1; i < len(groups[0].Chunks); i++ {
		if groups[0].Chunks[i-1].StartTime > groups[0].Chunks[i].StartTime {
			t.Errorf("chunks not chronological at %d: %+v", i, groups[0].Chunks)
		}
	}
}

func TestOrganize_GroupOrder(t *testing.T) {
	tests := []struct {
		name   string
		chunks []Chunk
		want   []string
	}{
		{
			name: "by best score",
			chunks: []Chunk{
				{SourceID: "low", StartTime: 0, EndTime: 10, Score: 0.4},
				{SourceID: "low", StartTime: 20, EndTime: 30, Score: 0.6},
				{SourceID: "high", StartTime: 0, EndTime: 10, Score: 0.9},
			},
			want: []string{"high", "low"},
		},
		{
			name: "best score not first chunk",
			chunks: []Chunk{
				{SourceID: "x", StartTime: 0, EndTime: 10, Score: 0.7},
				{SourceID: "y", StartTime: 0, EndTime: 10, Score: 0.2},
				{SourceID: "y", StartTime: 50, EndTime: 60, Score: 0.95},
			},
			want: []string{"y", "x"},
		},
		{
			name: "ties by video id",
			chunks: []Chunk{
				{SourceID: "b", StartTime: 0, EndTime: 10, Score: 0.5},
				{SourceID: "a", StartTime: 0, EndTime: 10, Score: 0.5},
			},
			want: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := Organize(tt.chunks)
			if len(groups) != len(tt.want) {
				t.Fatalf("Organize() returned %d groups, want %d", len(groups), len(tt.want))
			}
			for i, g := range groups {
				if g.SourceID != tt.want[i] {
					t.Errorf("groups[%d] = %s, want %s", i, g.SourceID, tt.want[i])
				}
			}
		})
	}
}

func TestOrganize_Empty(t *testing.T) {
	if groups := Organize(nil); len(groups) != 0 {
		t.Errorf("Organize(nil) = %+v, want empty", groups)
	}
}

func TestRenderContext(t *testing.T) {
	groups := []Group{
		{
			SourceID: "dQw4w9WgXcQ",
			Chunks: []Chunk{
				{SourceID: "dQw4w9WgXcQ", StartTime: 12.7, EndTime: 45.2, Score: 0.874, Text: "  never gonna give you up  "},
				{SourceID: "dQw4w9WgXcQ", StartTime: 3600, EndTime: 3725.9, Score: 1.4, Text: `she said "hi"`},
			},
		},
		{
			SourceID: "abc",
			Chunks: []Chunk{
				{SourceID: "abc", StartTime: 0, EndTime: 5, Score: 0.005, Text: "intro"},
			},
		},
	}

	want := "=== Video: dQw4w9WgXcQ ===\n" +
		"[0:12 - 0:45] (87% relevant) \"never gonna give you up\"\n" +
		"[1:00:00 - 1:02:05] (100% relevant) \"she said \\\"hi\\\"\"\n" +
		"\n" +
		"=== Video: abc ===\n" +
		"[0:00 - 0:05] (1% relevant) \"intro\"\n"

	got := RenderContext(groups)
	if got != want {
		t.Errorf("RenderContext() =\n%s\nwant\n%s", got, want)
	}
	if again := RenderContext(groups); again != got {
		t.Error("RenderContext() is not deterministic")
	}
}

func TestRenderContext_Empty(t *testing.T) {
	if got := RenderContext(nil); got != "" {
		t.Errorf("RenderContext(nil) = %q, want empty", got)
	}
}
