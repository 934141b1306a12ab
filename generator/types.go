package generator

import "errors"

// Document is the state threaded through one pipeline run. Topic is fixed at
// entry; ResearchNotes and Outline are written once by research; Content is
// written by drafting and replaced by editing; RevisionCount only ever goes
// from 0 to 1, on the one real edit.
type Document struct {
	Topic         string `json:"topic"`
	ResearchNotes string `json:"research_notes,omitempty"`
	Outline       string `json:"outline,omitempty"`
	Content       string `json:"content,omitempty"`
	RevisionCount int    `json:"revision_count"`
}

var ErrInvalidDocument = errors.New("invalid initial document")

// NewDocument returns the entry document for topic.
func NewDocument(topic string) Document {
	return Document{Topic: topic}
}

func (d Document) validateEntry() error {
	switch {
	case d.Topic == "":
		return errors.Join(ErrInvalidDocument, errors.New("topic is required"))
	case d.RevisionCount != 0:
		return errors.Join(ErrInvalidDocument, errors.New("revision_count must start at 0"))
	case d.ResearchNotes != "" || d.Outline != "" || d.Content != "":
		return errors.Join(ErrInvalidDocument, errors.New("only topic may be set at entry"))
	}
	return nil
}

// ResearchResult is what the research stage hands back.
type ResearchResult struct {
	Notes   string `json:"research_notes"`
	Outline string `json:"outline"`
}

// Result is the terminal state of a run.
type Result struct {
	RunID    string   `json:"run_id"`
	Document Document `json:"document"`
	Trace    Trace    `json:"trace"`
}
