package rag

import (
	"fmt"
	"strings"
)

// Prompt is the pair of instructions sent to the generator.
type Prompt struct {
	System string
	User   string
}

// BuildPrompt assembles the system and user instructions for a question over rendered context.
// It is a pure function of its inputs.
func BuildPrompt(contextText, question string, cfg Config) Prompt {
	cfg = cfg.WithDefaults()

	minParagraphs := 2
	if cfg.MaxParagraphs < minParagraphs {
		minParagraphs = cfg.MaxParagraphs
	}
	paragraphRange := fmt.Sprintf("%d-%d paragraphs", minParagraphs, cfg.MaxParagraphs)
	if minParagraphs == cfg.MaxParagraphs {
		paragraphRange = fmt.Sprintf("exactly %d paragraph(s)", cfg.MaxParagraphs)
	}
	example := formatMarker(cfg.CitationMarkerTemplate, "M:SS")

	var sys strings.Builder
	sys.WriteString("You are a helpful assistant that answers questions using only the YouTube video transcript excerpts provided by the user.\n\n")
	sys.WriteString("Rules:\n")
	fmt.Fprintf(&sys, "- Write %s separated by a blank line.\n", paragraphRange)
	fmt.Fprintf(&sys, "- End every paragraph with a timestamp citation in exactly this format: %s\n", example)
	sys.WriteString("  Use a timestamp that falls inside the excerpt the paragraph relies on (M:SS, or H:MM:SS past one hour).\n")
	if cfg.RequireQuotes {
		sys.WriteString("- Quote the transcript directly wherever possible, using double quotes.\n")
	} else {
		sys.WriteString("- Prefer direct quotes from the transcript over paraphrase.\n")
	}
	sys.WriteString("- When the excerpts describe a sequence of events, organize the answer chronologically.\n")
	sys.WriteString("- If the excerpts do not answer the question, say so instead of guessing.\n")
	if cfg.MaxOutputTokens > 0 {
		fmt.Fprintf(&sys, "- Keep the whole answer under %d tokens.\n", cfg.MaxOutputTokens)
	}

	var user strings.Builder
	user.WriteString("Transcript excerpts, grouped by video and ordered by time:\n\n")
	user.WriteString(contextText)
	if !strings.HasSuffix(contextText, "\n") {
		user.WriteString("\n")
	}
	fmt.Fprintf(&user, "\nQuestion: %s\n\n", strings.TrimSpace(question))
	fmt.Fprintf(&user, "Answer in %s, each ending with %s.", paragraphRange, example)

	return Prompt{
		System: sys.String(),
		User:   user.String(),
	}
}

// formatMarker renders the citation marker for a timestamp.
// Templates without a %s verb get the timestamp appended.
func formatMarker(template, timestamp string) string {
	if strings.Count(template, "%s") != 1 || strings.Count(template, "%") != 1 {
		return strings.TrimSpace(template + " " + timestamp)
	}
	return fmt.Sprintf(template, timestamp)
}
