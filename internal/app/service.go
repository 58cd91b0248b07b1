package app

import (
	"context"
	"net/http"
	"time"

	"blueprint/api/internal/blueprint"
	"blueprint/api/internal/config"
	"blueprint/api/internal/editor"
	"blueprint/api/internal/export"
	"blueprint/api/internal/session"
	"blueprint/api/internal/util"
)

// Service glues the editing core to session storage and the exporters. Each
// call is one atomic load → mutate → store round trip; a session has exactly
// one writer (its user), so no two mutators interleave against the same
// document version in practice.
type Service struct {
	cfg      config.Config
	sessions session.Store
	exporter *export.Service
}

func New(cfg config.Config, sessions session.Store, exporter *export.Service) *Service {
	return &Service{
		cfg:      cfg,
		sessions: sessions,
		exporter: exporter,
	}
}

// Ping reports session-store health.
func (s *Service) Ping(ctx context.Context) error {
	return s.sessions.Ping(ctx)
}

// CreateSession starts a new editing session seeded from the template
// document and returns its workspace payload.
func (s *Service) CreateSession(ctx context.Context) (map[string]any, error) {
	id := util.NewID("ses")
	ed := editor.New(blueprint.NewTemplate())
	if err := s.store(ctx, id, ed, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.workspace(id, ed), nil
}

// Workspace returns the current editing state for a session.
func (s *Service) Workspace(ctx context.Context, sessionID string) (map[string]any, error) {
	ed, _, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.workspace(sessionID, ed), nil
}

// Apply runs one mutator against a clone of the session's draft and persists
// the result. Mutators are defensive no-ops on missing entities, so Apply
// itself only fails on session or storage problems.
func (s *Service) Apply(ctx context.Context, sessionID string, mutate func(*blueprint.Blueprint)) (map[string]any, error) {
	ed, createdAt, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ed.Edit(mutate)
	if err := s.store(ctx, sessionID, ed, createdAt); err != nil {
		return nil, err
	}
	return s.workspace(sessionID, ed), nil
}

// Save promotes the draft to committed. A draft with error-severity issues
// blocks the save and leaves the committed document unchanged.
func (s *Service) Save(ctx context.Context, sessionID string) (map[string]any, error) {
	ed, createdAt, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	issues, err := ed.Save()
	if err != nil {
		return nil, domainError(http.StatusConflict, "SAVE_BLOCKED", "Draft has validation errors", map[string]any{
			"issues": issues,
		})
	}
	if err := s.store(ctx, sessionID, ed, createdAt); err != nil {
		return nil, err
	}
	return s.workspace(sessionID, ed), nil
}

// Discard resets the draft to the committed document.
func (s *Service) Discard(ctx context.Context, sessionID string) (map[string]any, error) {
	ed, createdAt, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ed.Discard()
	if err := s.store(ctx, sessionID, ed, createdAt); err != nil {
		return nil, err
	}
	return s.workspace(sessionID, ed), nil
}

// Reset replaces both documents with a fresh template. A dirty draft requires
// explicit confirmation so unsaved work is never dropped silently.
func (s *Service) Reset(ctx context.Context, sessionID string, confirmed bool) (map[string]any, error) {
	ed, createdAt, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if ed.Dirty() && !confirmed {
		return nil, domainError(http.StatusConflict, "CONFIRM_REQUIRED", "Draft has unsaved changes; confirm to reset", nil)
	}
	ed.Reset()
	if err := s.store(ctx, sessionID, ed, createdAt); err != nil {
		return nil, err
	}
	return s.workspace(sessionID, ed), nil
}

// Import replaces the draft with the uploaded document. Validation never
// blocks an import — only save does — but a payload that fails to parse
// aborts with the draft untouched.
func (s *Service) Import(ctx context.Context, sessionID string, raw []byte) (map[string]any, error) {
	ed, createdAt, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := ed.Import(raw); err != nil {
		return nil, domainError(http.StatusBadRequest, "INVALID_DOCUMENT", err.Error(), nil)
	}
	if err := s.store(ctx, sessionID, ed, createdAt); err != nil {
		return nil, err
	}
	return s.workspace(sessionID, ed), nil
}

// EndSession deletes a session and its stored documents.
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	if _, _, err := s.load(ctx, sessionID); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, sessionID)
}

// Export produces a JSON, PNG, or PDF artifact from the draft or committed
// document. Read-only: session state is never changed by an export.
func (s *Service) Export(ctx context.Context, sessionID string, source export.Source, format export.Format) (*export.Result, error) {
	ed, _, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	doc := ed.Draft()
	if source == export.SourceCommitted {
		doc = ed.Committed()
	}
	result, err := s.exporter.Export(ctx, doc, format)
	if err != nil {
		return nil, domainError(http.StatusBadGateway, "EXPORT_FAILED", err.Error(), nil)
	}
	return result, nil
}

func (s *Service) load(ctx context.Context, sessionID string) (*editor.Editor, time.Time, error) {
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, time.Time{}, err
	}
	return editor.Restore(state.Committed, state.Draft), state.CreatedAt, nil
}

func (s *Service) store(ctx context.Context, sessionID string, ed *editor.Editor, createdAt time.Time) error {
	return s.sessions.Save(ctx, sessionID, session.State{
		Committed: ed.Committed(),
		Draft:     ed.Draft(),
		CreatedAt: createdAt,
	})
}

// workspace builds the payload every mutating call returns: the raw draft, its
// fixed-shape grid projection, and the live validation issues.
func (s *Service) workspace(sessionID string, ed *editor.Editor) map[string]any {
	issues := ed.Validate()
	if issues == nil {
		issues = []blueprint.Issue{}
	}
	return map[string]any{
		"sessionId": sessionID,
		"blueprint": ed.Draft(),
		"grid":      blueprint.BuildGrid(ed.Draft(), true),
		"issues":    issues,
		"dirty":     ed.Dirty(),
		"canSave":   !blueprint.HasErrors(issues),
	}
}
