// Package editor holds the draft/commit controller: a committed document (the
// last known-good state) and a live draft, with save gated on validation.
package editor

import (
	"encoding/json"
	"errors"
	"fmt"

	"blueprint/api/internal/blueprint"
)

var (
	// ErrValidationFailed is returned by Save when the draft has error-severity
	// issues. The committed document is left untouched.
	ErrValidationFailed = errors.New("draft has validation errors")
	// ErrMalformedImport is returned when an import payload cannot be parsed.
	// The draft is left untouched.
	ErrMalformedImport = errors.New("malformed blueprint document")
)

// Editor owns one editing session's state. It is not safe for concurrent use;
// the app layer serializes access per session.
type Editor struct {
	committed *blueprint.Blueprint
	draft     *blueprint.Blueprint
}

// New starts an editor from a committed document. The draft begins as an
// independent copy.
func New(committed *blueprint.Blueprint) *Editor {
	if committed == nil {
		committed = blueprint.NewTemplate()
	}
	return &Editor{
		committed: committed.Clone(),
		draft:     committed.Clone(),
	}
}

// Restore rebuilds an editor from previously stored committed/draft documents.
func Restore(committed, draft *blueprint.Blueprint) *Editor {
	e := New(committed)
	if draft != nil {
		e.draft = draft.Clone()
	}
	return e
}

// Edit applies a mutator to a clone of the draft and swaps the clone in, so a
// document under observation is never mutated in place. The committed document
// is never touched.
func (e *Editor) Edit(mutate func(*blueprint.Blueprint)) {
	next := e.draft.Clone()
	mutate(next)
	e.draft = next
}

// Draft returns a copy of the current draft.
func (e *Editor) Draft() *blueprint.Blueprint {
	return e.draft.Clone()
}

// Committed returns a copy of the committed document.
func (e *Editor) Committed() *blueprint.Blueprint {
	return e.committed.Clone()
}

// Dirty reports whether the draft differs from the committed document by deep
// value comparison.
func (e *Editor) Dirty() bool {
	return !blueprint.Equal(e.draft, e.committed)
}

// Validate scores the current draft.
func (e *Editor) Validate() []blueprint.Issue {
	return blueprint.Validate(e.draft)
}

// Save promotes the draft to committed, provided validation finds no errors.
// The draft is then reset to a fresh copy of the new committed document so
// later edits cannot reach back into the saved snapshot.
func (e *Editor) Save() ([]blueprint.Issue, error) {
	issues := blueprint.Validate(e.draft)
	if blueprint.HasErrors(issues) {
		return issues, ErrValidationFailed
	}
	e.committed = e.draft.Clone()
	e.draft = e.committed.Clone()
	return issues, nil
}

// Discard resets the draft to a copy of the committed document.
func (e *Editor) Discard() {
	e.draft = e.committed.Clone()
}

// Reset replaces both committed and draft with a fresh template. Confirming
// the loss of a dirty draft is the caller's job.
func (e *Editor) Reset() {
	e.committed = blueprint.NewTemplate()
	e.draft = e.committed.Clone()
}

// Import replaces the draft (never the committed document) with the parsed
// payload, regardless of how it validates — the user fixes issues before
// saving. The payload must at minimum be a JSON object with an `actors` array;
// on any parse failure the draft is untouched.
func (e *Editor) Import(raw []byte) error {
	var probe struct {
		Actors *json.RawMessage `json:"actors"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	if probe.Actors == nil {
		return fmt.Errorf("%w: missing actors array", ErrMalformedImport)
	}
	var actors []blueprint.Actor
	if err := json.Unmarshal(*probe.Actors, &actors); err != nil {
		return fmt.Errorf("%w: actors is not an array", ErrMalformedImport)
	}
	var doc blueprint.Blueprint
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	e.draft = &doc
	return nil
}
