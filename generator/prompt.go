package generator

import (
	"fmt"
	"strings"
)

// Prompt is the message pair sent to a model.
type Prompt struct {
	System string
	User   string
}

// Section labels the research prompt asks for and the parser keys on.
const (
	NotesLabel    = "SECTION 1 — RESEARCH NOTES"
	OutlineMarker = "SECTION 2"
	OutlineLabel  = "— BLOG OUTLINE"
)

const (
	researchSystem = "You are a research assistant. Follow the requested output format exactly."
	writerSystem   = "You are a professional blog writer. Output Markdown only."
	editorSystem   = "You are a professional editor."
)

// BuildResearchPrompt asks for notes and an outline in one response.
func BuildResearchPrompt(topic, corpus string) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Topic: %s\n\n", topic))
	sb.WriteString("Using the web research below, produce TWO sections exactly in this format:\n\n")
	sb.WriteString(NotesLabel + "\n")
	sb.WriteString("- Bullet points only\n")
	sb.WriteString("- Key facts\n")
	sb.WriteString("- Trends\n")
	sb.WriteString("- Statistics (numbers if available)\n")
	sb.WriteString("- Expert or industry opinions\n")
	sb.WriteString("- Max 200 words\n\n")
	sb.WriteString(OutlineMarker + " " + OutlineLabel + "\n")
	sb.WriteString("- H1 title\n")
	sb.WriteString("- H2 section headings\n")
	sb.WriteString("- Logical flow\n")
	sb.WriteString("- No explanations\n\n")
	sb.WriteString("Rules:\n- Be factual\n- No fluff\n- No repetition\n\n")
	sb.WriteString("WEB RESEARCH:\n")
	sb.WriteString(corpus)
	sb.WriteString("\n")

	return Prompt{System: researchSystem, User: sb.String()}
}

// BuildDraftPrompt expands an outline and notes into a full post.
func BuildDraftPrompt(outline, notes string) Prompt {
	var sb strings.Builder
	sb.WriteString("Write a structured, engaging blog post using:\n\n")
	sb.WriteString("OUTLINE:\n")
	sb.WriteString(outline)
	sb.WriteString("\n\nRESEARCH NOTES:\n")
	sb.WriteString(notes)
	sb.WriteString("\n\nRequirements:\n")
	sb.WriteString("- Strong introduction and conclusion\n")
	sb.WriteString("- Clear section headings\n")
	sb.WriteString("- Professional tone\n")
	sb.WriteString("- Logical flow\n")

	return Prompt{System: writerSystem, User: sb.String()}
}

// BuildEditPrompt asks for the polished post and nothing else.
func BuildEditPrompt(content string) Prompt {
	var sb strings.Builder
	sb.WriteString("TASK:\nPolish the blog post below.\n\n")
	sb.WriteString("RULES (STRICT):\n")
	sb.WriteString("- Output ONLY the final edited blog post\n")
	sb.WriteString("- Do NOT explain changes\n")
	sb.WriteString("- Do NOT add summaries\n")
	sb.WriteString("- Do NOT add bullet points\n")
	sb.WriteString("- Do NOT add commentary before or after\n\n")
	sb.WriteString("BLOG POST:\n")
	sb.WriteString(content)
	sb.WriteString("\n")

	return Prompt{System: editorSystem, User: sb.String()}
}
