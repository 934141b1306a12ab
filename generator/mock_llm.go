package generator

import (
	"context"
	"fmt"
	"strings"
)

// MockLLM answers every tier locally without calling a model, for offline
// runs and demos. It recognises the stage from the system prompt.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	switch prompt.System {
	case researchSystem:
		topic := valueAfter(prompt.User, "Topic: ")
		var sb strings.Builder
		sb.WriteString(NotesLabel + "\n")
		sb.WriteString(fmt.Sprintf("- %s draws steady public interest.\n", topic))
		sb.WriteString("- No live sources were consulted for this offline draft.\n")
		sb.WriteString(OutlineMarker + " " + OutlineLabel + "\n")
		sb.WriteString(fmt.Sprintf("# %s\n## Background\n## Key Points\n## Conclusion\n", topic))
		return sb.String(), nil
	case writerSystem:
		outline := between(prompt.User, "OUTLINE:\n", "\n\nRESEARCH NOTES:")
		var sb strings.Builder
		for _, line := range strings.Split(outline, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if !strings.HasPrefix(line, "#") {
				line = "## " + line
			}
			heading := strings.TrimSpace(strings.TrimLeft(line, "#"))
			sb.WriteString(line + "\n\n")
			sb.WriteString(fmt.Sprintf("This section covers %s.\n\n", strings.ToLower(heading)))
		}
		return sb.String(), nil
	case editorSystem:
		return strings.TrimSpace(valueAfterBlock(prompt.User, "BLOG POST:\n")), nil
	default:
		return prompt.User, nil
	}
}

func valueAfter(s, prefix string) string {
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return ""
}

func valueAfterBlock(s, marker string) string {
	if i := strings.Index(s, marker); i >= 0 {
		return s[i+len(marker):]
	}
	return s
}

func between(s, start, end string) string {
	s = valueAfterBlock(s, start)
	if i := strings.Index(s, end); i >= 0 {
		return s[:i]
	}
	return s
}
