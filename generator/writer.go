package generator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ghostwriter/logging"
)

// Writer expands an outline and notes into a full post on the local tier.
type Writer struct {
	llm    Invoker
	logger *slog.Logger
}

func NewWriter(llm Invoker) (*Writer, error) {
	if llm == nil {
		return nil, errors.New("llm invoker is required")
	}
	return &Writer{llm: llm, logger: logging.New("writer")}, nil
}

// Run makes exactly one local-tier call and returns its text as is.
func (w *Writer) Run(ctx context.Context, outline, notes string) (string, error) {
	start := time.Now()
	content, err := w.llm.Invoke(ctx, TierLocal, BuildDraftPrompt(outline, notes))
	if err != nil {
		return "", err
	}
	w.logger.Info("draft written", "chars", len(content), "elapsed", time.Since(start))
	return content, nil
}
