package generator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ghostwriter/logging"
)

// Editor polishes the draft with the final tier, at most once per document.
type Editor struct {
	llm    Invoker
	logger *slog.Logger
}

func NewEditor(llm Invoker) (*Editor, error) {
	if llm == nil {
		return nil, errors.New("llm invoker is required")
	}
	return &Editor{llm: llm, logger: logging.New("editor")}, nil
}

// Run replaces doc.Content with the edited post and bumps RevisionCount.
// A document that has already been edited is returned unchanged.
func (e *Editor) Run(ctx context.Context, doc Document) (Document, error) {
	if doc.RevisionCount >= 1 {
		e.logger.Info("already edited, skipping final tier", "revision_count", doc.RevisionCount)
		return doc, nil
	}

	start := time.Now()
	content, err := e.llm.Invoke(ctx, TierFinal, BuildEditPrompt(doc.Content))
	if err != nil {
		return doc, err
	}
	doc.Content = content
	doc.RevisionCount++
	e.logger.Info("edit done", "chars", len(content), "elapsed", time.Since(start))
	return doc, nil
}
