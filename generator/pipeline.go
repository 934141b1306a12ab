package generator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ghostwriter/logging"
	"ghostwriter/metrics"
)

// State is a node of the run state machine.
type State string

const (
	StateResearch   State = "RESEARCH"
	StateDraft      State = "DRAFT"
	StateEdit       State = "EDIT"
	StateTerminated State = "TERMINATED"
)

// maxRevisions bounds how many times EDIT may route back to DRAFT.
const maxRevisions = 1

// ShouldRevise reports whether a document entering EDIT goes back to DRAFT
// once the edit is done.
func ShouldRevise(doc Document) bool {
	return doc.RevisionCount < maxRevisions
}

// ResearchStage, DraftStage and EditStage are the three stage contracts the
// pipeline drives. Researcher, Writer and Editor implement them.
type ResearchStage interface {
	Run(ctx context.Context, topic string) (ResearchResult, error)
}

type DraftStage interface {
	Run(ctx context.Context, outline, notes string) (string, error)
}

type EditStage interface {
	Run(ctx context.Context, doc Document) (Document, error)
}

// Pipeline runs RESEARCH -> DRAFT -> EDIT -> DRAFT -> EDIT -> TERMINATED.
// It holds no per-run state and can serve concurrent runs.
type Pipeline struct {
	research ResearchStage
	draft    DraftStage
	edit     EditStage
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewPipeline(r ResearchStage, d DraftStage, e EditStage, m *metrics.Metrics) (*Pipeline, error) {
	if r == nil || d == nil || e == nil {
		return nil, errors.New("research, draft and edit stages are required")
	}
	return &Pipeline{research: r, draft: d, edit: e, metrics: m, logger: logging.New("pipeline")}, nil
}

// run is the per-invocation state.
type run struct {
	doc       Document
	redrafts  int
	reviseOut bool // ShouldRevise as sampled on entry to the last EDIT
}

// Run drives doc from RESEARCH to TERMINATED. A stage failure ends the run
// with a *StageError; the partial document and trace are still returned.
func (p *Pipeline) Run(ctx context.Context, doc Document) (Result, error) {
	if err := doc.validateEntry(); err != nil {
		return Result{}, err
	}

	res := Result{RunID: uuid.NewString()}
	logger := p.logger.With("run_id", res.RunID)
	logger.Info("run started", "topic", doc.Topic)
	start := time.Now()

	r := &run{doc: doc}
	state := StateResearch
	for state != StateTerminated {
		t0 := time.Now()
		var (
			skipped bool
			err     error
		)
		if err = ctx.Err(); err == nil {
			skipped, err = p.step(ctx, state, r)
		}
		elapsed := time.Since(t0)
		p.metrics.ObserveStage(strings.ToLower(string(state)), elapsed)
		res.Trace.record(state, elapsed, skipped, err)

		if err != nil {
			p.metrics.ObserveRun(metrics.OutcomeError)
			logger.Error("run failed", "state", state, "elapsed", time.Since(start), "error", err)
			res.Document = r.doc
			return res, &StageError{Stage: state, Err: err}
		}
		logger.Debug("state done", "state", state, "skipped", skipped, "elapsed", elapsed)
		state = p.next(state, r)
	}

	p.metrics.ObserveRun(metrics.OutcomeOK)
	logger.Info("run finished", "states", len(res.Trace), "revision_count", r.doc.RevisionCount, "elapsed", time.Since(start))
	res.Document = r.doc
	return res, nil
}

// step executes state against the run and reports whether it was a no-op.
func (p *Pipeline) step(ctx context.Context, state State, r *run) (bool, error) {
	switch state {
	case StateResearch:
		out, err := p.research.Run(ctx, r.doc.Topic)
		if err != nil {
			return false, err
		}
		r.doc.ResearchNotes = out.Notes
		r.doc.Outline = out.Outline
		return false, nil

	case StateDraft:
		// An edited document is carried through so the final content is
		// the editor's output.
		if r.doc.RevisionCount >= maxRevisions {
			return true, nil
		}
		content, err := p.draft.Run(ctx, r.doc.Outline, r.doc.ResearchNotes)
		if err != nil {
			return false, err
		}
		r.doc.Content = content
		return false, nil

	case StateEdit:
		r.reviseOut = ShouldRevise(r.doc)
		before := r.doc.RevisionCount
		doc, err := p.edit.Run(ctx, r.doc)
		if err != nil {
			return false, err
		}
		r.doc = doc
		return doc.RevisionCount == before, nil
	}
	return false, errors.New("no handler for state " + string(state))
}

func (p *Pipeline) next(state State, r *run) State {
	switch state {
	case StateResearch:
		return StateDraft
	case StateDraft:
		return StateEdit
	case StateEdit:
		if r.reviseOut && r.redrafts < maxRevisions {
			r.redrafts++
			return StateDraft
		}
	}
	return StateTerminated
}
