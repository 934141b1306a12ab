package generator

import "strings"

// FallbackOutline is used whenever the model's outline cannot be recovered.
const FallbackOutline = "Introduction\nMain Content\nConclusion"

// ParseResearch splits a research response on OutlineMarker. Without the
// marker the whole response becomes the notes and FallbackOutline is used.
// It never fails.
func ParseResearch(text string) ResearchResult {
	idx := strings.Index(text, OutlineMarker)
	if idx < 0 {
		return ResearchResult{Notes: text, Outline: FallbackOutline}
	}
	notes := strings.TrimSpace(strings.ReplaceAll(text[:idx], NotesLabel, ""))
	outline := strings.TrimSpace(strings.ReplaceAll(text[idx+len(OutlineMarker):], OutlineLabel, ""))
	if outline == "" {
		outline = FallbackOutline
	}
	return ResearchResult{Notes: notes, Outline: outline}
}
