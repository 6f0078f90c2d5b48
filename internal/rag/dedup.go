package rag

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

// overlapFraction is the intersection of two intervals divided by the shorter duration.
func overlapFraction(a, b Chunk) float64 {
	intersection := math.Min(a.EndTime, b.EndTime) - math.Max(a.StartTime, b.StartTime)
	if intersection <= 0 {
		return 0
	}
	shorter := math.Min(a.Duration(), b.Duration())
	if shorter <= 0 {
		return 0
	}
	return intersection / shorter
}

// compareByRelevance orders chunks by score descending. The remaining keys make the
// order total so the same chunks always come out in the same sequence.
func compareByRelevance(a, b Chunk) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := strings.Compare(a.SourceID, b.SourceID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.StartTime, b.StartTime); c != 0 {
		return c
	}
	if c := cmp.Compare(a.EndTime, b.EndTime); c != 0 {
		return c
	}
	return strings.Compare(a.Text, b.Text)
}

// Deduplicate drops chunks that mostly repeat a better-scoring chunk of the same video.
//
// Candidates are visited by score, highest first. A candidate is rejected when its overlap
// fraction with any already accepted chunk of the same source exceeds threshold. If fewer than
// minKept chunks survive, the best rejected candidates are admitted until minKept is reached or
// the candidates run out. The result is ordered by score, highest first, and running
// Deduplicate on its own output returns it unchanged.
func Deduplicate(chunks []Chunk, threshold float64, minKept int) []Chunk {
	if len(chunks) == 0 {
		return []Chunk{}
	}

	candidates := slices.Clone(chunks)
	slices.SortStableFunc(candidates, compareByRelevance)

	accepted := make([]Chunk, 0, len(candidates))
	var rejected []Chunk
	bySource := make(map[string][]Chunk)
	for _, candidate := range candidates {
		if overlapsAccepted(candidate, bySource[candidate.SourceID], threshold) {
			rejected = append(rejected, candidate)
			continue
		}
		accepted = append(accepted, candidate)
		bySource[candidate.SourceID] = append(bySource[candidate.SourceID], candidate)
	}

	// rejected is already in relevance order, so the floor admits the best of them first.
	for _, r := range rejected {
		if len(accepted) >= minKept {
			break
		}
		accepted = append(accepted, r)
	}

	slices.SortStableFunc(accepted, compareByRelevance)
	return accepted
}

func overlapsAccepted(candidate Chunk, accepted []Chunk, threshold float64) bool {
	for _, kept := range accepted {
		if overlapFraction(candidate, kept) > threshold {
			return true
		}
	}
	return false
}
