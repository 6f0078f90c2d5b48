package rag

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Organize groups chunks by video. Chunks inside a group are sorted by start time and
// groups are ordered by their best score, highest first. Ties fall back to the video id.
func Organize(chunks []Chunk) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)
	for _, c := range chunks {
		i, ok := index[c.SourceID]
		if !ok {
			i = len(groups)
			index[c.SourceID] = i
			groups = append(groups, Group{SourceID: c.SourceID})
		}
		groups[i].Chunks = append(groups[i].Chunks, c)
	}

	for i := range groups {
		slices.SortStableFunc(groups[i].Chunks, func(a, b Chunk) int {
			if c := cmp.Compare(a.StartTime, b.StartTime); c != 0 {
				return c
			}
			if c := cmp.Compare(a.EndTime, b.EndTime); c != 0 {
				return c
			}
			return cmp.Compare(b.Score, a.Score)
		})
	}

	slices.SortStableFunc(groups, func(a, b Group) int {
		if c := cmp.Compare(b.MaxScore(), a.MaxScore()); c != 0 {
			return c
		}
		return strings.Compare(a.SourceID, b.SourceID)
	})
	return groups
}

// RenderContext formats groups as the only evidence the generator sees:
//
//	=== Video: <id> ===
//	[0:12 - 0:45] (87% relevant) "text"
//
// with one blank line between groups.
func RenderContext(groups []Group) string {
	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "=== Video: %s ===\n", g.SourceID)
		for _, c := range g.Chunks {
			fmt.Fprintf(&b, "[%s - %s] (%d%% relevant) %q\n",
				FormatTimestamp(floorSeconds(c.StartTime)),
				FormatTimestamp(floorSeconds(c.EndTime)),
				relevancePercent(c.Score),
				strings.TrimSpace(c.Text),
			)
		}
	}
	return b.String()
}

func relevancePercent(score float64) int {
	return int(math.Round(clampScore(score) * 100))
}
