package rag

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	contextText := "=== Video: abc ===\n[0:10 - 0:20] (90% relevant) \"goroutines are cheap\"\n"

	tests := []struct {
		name        string
		cfg         Config
		sysContains []string
		sysExcludes []string
	}{
		{
			name: "defaults",
			cfg:  DefaultConfig(),
			sysContains: []string{
				"2-4 paragraphs",
				"📺 [Watch at M:SS]",
				"Quote the transcript directly",
				"chronologically",
				"under 1000 tokens",
			},
		},
		{
			name: "quotes preferred",
			cfg:  Config{RequireQuotes: false},
			sysContains: []string{
				"Prefer direct quotes",
			},
			sysExcludes: []string{
				"Quote the transcript directly",
			},
		},
		{
			name: "single paragraph",
			cfg:  Config{MaxParagraphs: 1},
			sysContains: []string{
				"exactly 1 paragraph(s)",
			},
		},
		{
			name: "custom marker and budget",
			cfg:  Config{CitationMarkerTemplate: "[at %s]", MaxOutputTokens: 250, MaxParagraphs: 6},
			sysContains: []string{
				"2-6 paragraphs",
				"[at M:SS]",
				"under 250 tokens",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPrompt(contextText, "  Why are goroutines cheap?  ", tt.cfg)

			for _, want := range tt.sysContains {
				if !strings.Contains(p.System, want) {
					t.Errorf("system prompt missing %q:\n%s", want, p.System)
				}
			}
			for _, unwanted := range tt.sysExcludes {
				if strings.Contains(p.System, unwanted) {
					t.Errorf("system prompt should not contain %q", unwanted)
				}
			}
			if !strings.Contains(p.User, contextText) {
				t.Error("user prompt missing rendered context")
			}
			if !strings.Contains(p.User, "Question: Why are goroutines cheap?\n") {
				t.Errorf("user prompt missing trimmed question:\n%s", p.User)
			}
		})
	}
}

func TestBuildPrompt_Pure(t *testing.T) {
	cfg := DefaultConfig()
	a := BuildPrompt("ctx", "q", cfg)
	b := BuildPrompt("ctx", "q", cfg)
	if a != b {
		t.Error("BuildPrompt() returned different prompts for the same input")
	}
}

func TestFormatMarker(t *testing.T) {
	tests := []struct {
		template string
		want     string
	}{
		{DefaultCitationMarker, "📺 [Watch at 2:05]"},
		{"(%s)", "(2:05)"},
		{"Watch at", "Watch at 2:05"},
		{"%s and %s", "%s and %s 2:05"},
		{"100% at %s", "100% at %s 2:05"},
	}
	for _, tt := range tests {
		if got := formatMarker(tt.template, "2:05"); got != tt.want {
			t.Errorf("formatMarker(%q) = %q, want %q", tt.template, got, tt.want)
		}
	}
}
