package rag

import (
	"math"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

var (
	blankLinePattern  = regexp.MustCompile(`\n[ \t]*\n`)
	extraSpacePattern = regexp.MustCompile(`[ \t]{2,}`)
)

// citationOutcome is the result of looking for a usable marker in one paragraph.
// Unmatched outcomes are resolved to a fallback chunk before leaving ParseCitations.
type citationOutcome struct {
	matched bool
	chunk   int // index into the relevance-ordered chunks
	seconds int
}

// ParseCitations splits generated text into paragraphs and resolves each paragraph's citation
// marker against the context chunks. It never fails: text without usable markers is routed to
// the best chunks not cited elsewhere, and an empty or blank completion becomes one paragraph.
// When chunks is empty the paragraphs carry zero citations.
func ParseCitations(raw string, chunks []Chunk, cfg Config) []Paragraph {
	cfg = cfg.WithDefaults()
	marker := compileMarker(cfg.CitationMarkerTemplate)

	blocks := splitParagraphs(raw, marker)
	if len(blocks) == 0 {
		blocks = []string{strings.TrimSpace(normalizeNewlines(raw))}
	}
	if len(blocks) > cfg.MaxParagraphs {
		kept := slices.Clone(blocks[:cfg.MaxParagraphs-1])
		blocks = append(kept, strings.Join(blocks[cfg.MaxParagraphs-1:], "\n\n"))
	}

	ranked := slices.Clone(chunks)
	slices.SortStableFunc(ranked, compareByRelevance)

	outcomes := make([]citationOutcome, len(blocks))
	used := make(map[int]bool)
	for i, block := range blocks {
		outcomes[i] = matchMarker(block, marker, ranked)
		if outcomes[i].matched {
			used[outcomes[i].chunk] = true
		}
	}

	paragraphs := make([]Paragraph, 0, len(blocks))
	for i, block := range blocks {
		p := Paragraph{Text: paragraphText(block, marker)}
		if len(ranked) > 0 {
			outcome := outcomes[i]
			if !outcome.matched {
				outcome = fallbackOutcome(ranked, used)
				used[outcome.chunk] = true
			}
			p.Citation = buildCitation(ranked[outcome.chunk], outcome.seconds, cfg)
		}
		paragraphs = append(paragraphs, p)
	}
	return paragraphs
}

// compileMarker turns a marker template such as "📺 [Watch at %s]" into a lenient pattern.
// Case and spacing are ignored, the leading symbols and closing text are optional, and the
// timestamp token is captured in group 1.
func compileMarker(template string) *regexp.Regexp {
	prefix, suffix := template, ""
	if i := strings.Index(template, "%s"); i >= 0 {
		prefix, suffix = template[:i], template[i+2:]
	}

	symbols, words := splitLeadingSymbols(strings.TrimSpace(prefix))

	var b strings.Builder
	b.WriteString(`(?i)`)
	if symbols != "" {
		b.WriteString(`(?:` + regexp.QuoteMeta(symbols) + `\s*)?`)
	}
	b.WriteString(loosePattern(words))
	b.WriteString(`\s*(\d[\d:.]*)`)
	if s := strings.TrimSpace(suffix); s != "" {
		b.WriteString(`(?:\s*` + loosePattern(s) + `)?`)
	}

	re, err := regexp.Compile(b.String())
	if err != nil {
		return compileMarker(DefaultCitationMarker)
	}
	return re
}

// splitLeadingSymbols separates decorative runes such as emoji from the wording of a prefix.
func splitLeadingSymbols(prefix string) (string, string) {
	for i, r := range prefix {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '[' || r == '(' {
			return strings.TrimSpace(prefix[:i]), prefix[i:]
		}
	}
	return strings.TrimSpace(prefix), ""
}

func loosePattern(text string) string {
	fields := strings.Fields(text)
	for i, f := range fields {
		fields[i] = regexp.QuoteMeta(f)
	}
	return strings.Join(fields, `\s*`)
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// splitParagraphs breaks text on blank lines and after marker lines that are followed by more
// text. Paragraphs that hold nothing but a marker are folded into their neighbour.
func splitParagraphs(raw string, marker *regexp.Regexp) []string {
	var pieces []string
	for _, block := range blankLinePattern.Split(normalizeNewlines(raw), -1) {
		lines := strings.Split(block, "\n")
		var current []string
		for i, line := range lines {
			current = append(current, line)
			if marker.MatchString(line) && hasText(lines[i+1:]) {
				pieces = append(pieces, strings.Join(current, "\n"))
				current = nil
			}
		}
		pieces = append(pieces, strings.Join(current, "\n"))
	}

	var paragraphs []string
	pending := ""
	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		if stripMarkers(piece, marker) == "" {
			if len(paragraphs) > 0 {
				paragraphs[len(paragraphs)-1] += " " + piece
			} else {
				pending = strings.TrimSpace(pending + " " + piece)
			}
			continue
		}
		if pending != "" {
			piece = piece + " " + pending
			pending = ""
		}
		paragraphs = append(paragraphs, piece)
	}
	if pending != "" {
		paragraphs = append(paragraphs, pending)
	}
	return paragraphs
}

func hasText(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return true
		}
	}
	return false
}

// paragraphText is block without its markers, or the block itself when it holds nothing but
// markers, so only a blank completion yields empty text.
func paragraphText(block string, marker *regexp.Regexp) string {
	if text := stripMarkers(block, marker); text != "" {
		return text
	}
	return block
}

// stripMarkers removes citation markers from paragraph text.
func stripMarkers(text string, marker *regexp.Regexp) string {
	stripped := marker.ReplaceAllString(text, "")
	lines := strings.Split(stripped, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(extraSpacePattern.ReplaceAllString(l, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// matchMarker returns the first marker in text whose timestamp parses, resolved to a chunk.
func matchMarker(text string, marker *regexp.Regexp, ranked []Chunk) citationOutcome {
	if len(ranked) == 0 {
		return citationOutcome{}
	}
	for _, m := range marker.FindAllStringSubmatch(text, -1) {
		token := strings.TrimRight(m[1], ".:")
		seconds, ok := ParseTimestamp(token)
		if !ok {
			continue
		}
		idx, contained := resolveChunk(ranked, seconds)
		if !contained {
			seconds = floorSeconds(ranked[idx].StartTime)
		}
		return citationOutcome{matched: true, chunk: idx, seconds: seconds}
	}
	return citationOutcome{}
}

// resolveChunk picks the chunk whose interval contains seconds, preferring the higher score.
// Without a containing chunk it picks the nearest interval, ties going to the higher score.
// ranked must be in relevance order so the first candidate wins remaining ties.
func resolveChunk(ranked []Chunk, seconds int) (int, bool) {
	t := float64(seconds)
	for i, c := range ranked {
		if c.StartTime <= t && t <= c.EndTime {
			return i, true
		}
	}

	best := 0
	bestDistance := math.Inf(1)
	for i, c := range ranked {
		d := c.StartTime - t
		if t > c.EndTime {
			d = t - c.EndTime
		}
		if d < bestDistance || (d == bestDistance && c.Score > ranked[best].Score) {
			best, bestDistance = i, d
		}
	}
	return best, false
}

// fallbackOutcome routes an unmatched paragraph to the best chunk not cited yet.
// Once every chunk has been cited it reuses the top chunk.
func fallbackOutcome(ranked []Chunk, used map[int]bool) citationOutcome {
	idx := 0
	for i := range ranked {
		if !used[i] {
			idx = i
			break
		}
	}
	return citationOutcome{matched: true, chunk: idx, seconds: floorSeconds(ranked[idx].StartTime)}
}

func buildCitation(c Chunk, seconds int, cfg Config) Citation {
	return Citation{
		SourceID:      c.SourceID,
		Timestamp:     seconds,
		FormattedTime: FormatTimestamp(seconds),
		WatchLink:     WatchLink(cfg.WatchURLBase, c.SourceID, seconds),
		TextSnippet:   truncateRunes(strings.TrimSpace(c.Text), cfg.SnippetLength),
	}
}

func truncateRunes(s string, limit int) string {
	if limit < 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
