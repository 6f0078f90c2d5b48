package rag

// Assemble merges parsed paragraphs into the final result.
func Assemble(paragraphs []Paragraph, model string) AnswerResult {
	if paragraphs == nil {
		paragraphs = []Paragraph{}
	}

	seen := make(map[string]bool)
	sources := make([]string, 0)
	for _, p := range paragraphs {
		id := p.Citation.SourceID
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		sources = append(sources, id)
	}

	result := AnswerResult{
		Paragraphs:       paragraphs,
		UniqueSources:    sources,
		VideosReferenced: len(sources),
		TotalParagraphs:  len(paragraphs),
		ModelUsed:        model,
	}
	if len(paragraphs) > 0 {
		primary := paragraphs[0].Citation
		result.PrimarySource = &primary
	}
	return result
}

// noResults is the result returned when retrieval found nothing in scope.
func noResults() AnswerResult {
	return AnswerResult{
		Paragraphs:    []Paragraph{},
		UniqueSources: []string{},
		NoResults:     true,
	}
}
