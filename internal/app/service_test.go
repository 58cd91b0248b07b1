package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"blueprint/api/internal/blueprint"
	"blueprint/api/internal/config"
	"blueprint/api/internal/export"
	"blueprint/api/internal/session"
)

type fakeRaster struct {
	pngFunc func(ctx context.Context, html string) ([]byte, error)
	pdfFunc func(ctx context.Context, html string) ([]byte, error)
}

func (f *fakeRaster) PNG(ctx context.Context, html string) ([]byte, error) {
	if f.pngFunc == nil {
		return []byte("png"), nil
	}
	return f.pngFunc(ctx, html)
}

func (f *fakeRaster) PDF(ctx context.Context, html string) ([]byte, error) {
	if f.pdfFunc == nil {
		return []byte("pdf"), nil
	}
	return f.pdfFunc(ctx, html)
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	store := session.NewMemoryStore(time.Hour)
	t.Cleanup(func() { store.Close() })
	return New(config.Config{}, store, export.NewService(&fakeRaster{}))
}

func createTestSession(t *testing.T, service *Service) string {
	t.Helper()
	payload, err := service.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	id, ok := payload["sessionId"].(string)
	if !ok || id == "" {
		t.Fatalf("payload has no session id: %v", payload)
	}
	return id
}

func TestCreateSessionSeedsTemplate(t *testing.T) {
	service := newTestService(t)
	payload, err := service.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	doc := payload["blueprint"].(*blueprint.Blueprint)
	if len(doc.Actors) != 2 {
		t.Errorf("expected template with two actors, got %d", len(doc.Actors))
	}
	if payload["dirty"].(bool) {
		t.Error("fresh session should not be dirty")
	}
	if !payload["canSave"].(bool) {
		t.Error("fresh template must be saveable")
	}
	grid := payload["grid"].(blueprint.Grid)
	if grid.Columns != 4 {
		t.Errorf("grid columns = %d", grid.Columns)
	}
}

func TestApplyPersistsAcrossLoads(t *testing.T) {
	service := newTestService(t)
	id := createTestSession(t, service)
	ctx := context.Background()

	payload, err := service.Apply(ctx, id, func(doc *blueprint.Blueprint) {
		blueprint.SetNetworkVP(doc, "Shared value")
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !payload["dirty"].(bool) {
		t.Error("edit should leave the session dirty")
	}

	reloaded, err := service.Workspace(ctx, id)
	if err != nil {
		t.Fatalf("Workspace failed: %v", err)
	}
	doc := reloaded["blueprint"].(*blueprint.Blueprint)
	if doc.NetworkValueProposition.Statement != "Shared value" {
		t.Error("edit did not survive a store round trip")
	}
}

func TestUnknownSessionMapsToNotFound(t *testing.T) {
	service := newTestService(t)
	_, err := service.Workspace(context.Background(), "ses_missing")
	if !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveBlockedReturnsConflict(t *testing.T) {
	service := newTestService(t)
	id := createTestSession(t, service)
	ctx := context.Background()

	raw := []byte(`{"actors": [
		{"id": "X1", "type": "customer", "name": "One", "costs": [], "benefits": []},
		{"id": "X2", "type": "customer", "name": "Two", "costs": [], "benefits": []}
	]}`)
	if _, err := service.Import(ctx, id, raw); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	_, err := service.Save(ctx, id)
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if domainErr.Status != 409 || domainErr.Code != "SAVE_BLOCKED" {
		t.Errorf("got %d %s", domainErr.Status, domainErr.Code)
	}
	details, ok := domainErr.Details.(map[string]any)
	if !ok || details["issues"] == nil {
		t.Errorf("blocked save should carry the issue list, got %v", domainErr.Details)
	}
}

func TestSaveThenDiscard(t *testing.T) {
	service := newTestService(t)
	id := createTestSession(t, service)
	ctx := context.Background()

	if _, err := service.Apply(ctx, id, func(doc *blueprint.Blueprint) {
		blueprint.SetMetaName(doc, "Saved name")
	}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	payload, err := service.Save(ctx, id)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if payload["dirty"].(bool) {
		t.Error("saved session should be clean")
	}

	if _, err := service.Apply(ctx, id, func(doc *blueprint.Blueprint) {
		blueprint.SetMetaName(doc, "Scrapped name")
	}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	payload, err = service.Discard(ctx, id)
	if err != nil {
		t.Fatalf("Discard failed: %v", err)
	}
	doc := payload["blueprint"].(*blueprint.Blueprint)
	if doc.Meta.Name != "Saved name" {
		t.Errorf("discard should restore the committed document, got %q", doc.Meta.Name)
	}
}

func TestResetConfirmGate(t *testing.T) {
	service := newTestService(t)
	id := createTestSession(t, service)
	ctx := context.Background()

	if _, err := service.Apply(ctx, id, blueprint.AddActor); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	_, err := service.Reset(ctx, id, false)
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "CONFIRM_REQUIRED" {
		t.Fatalf("expected CONFIRM_REQUIRED, got %v", err)
	}

	payload, err := service.Reset(ctx, id, true)
	if err != nil {
		t.Fatalf("confirmed reset failed: %v", err)
	}
	doc := payload["blueprint"].(*blueprint.Blueprint)
	if len(doc.Actors) != 2 {
		t.Errorf("reset should restore the template, got %d actors", len(doc.Actors))
	}

	// A clean session resets without confirmation.
	if _, err := service.Reset(ctx, id, false); err != nil {
		t.Errorf("clean reset should not need confirmation: %v", err)
	}
}

func TestImportParseFailure(t *testing.T) {
	service := newTestService(t)
	id := createTestSession(t, service)
	ctx := context.Background()

	_, err := service.Import(ctx, id, []byte(`{broken`))
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Status != 400 || domainErr.Code != "INVALID_DOCUMENT" {
		t.Fatalf("expected 400 INVALID_DOCUMENT, got %v", err)
	}

	// The stored draft must be unharmed.
	payload, err := service.Workspace(ctx, id)
	if err != nil {
		t.Fatalf("Workspace failed: %v", err)
	}
	doc := payload["blueprint"].(*blueprint.Blueprint)
	if len(doc.Actors) != 2 {
		t.Error("failed import corrupted the draft")
	}
}

func TestExportSources(t *testing.T) {
	service := newTestService(t)
	id := createTestSession(t, service)
	ctx := context.Background()

	if _, err := service.Apply(ctx, id, func(doc *blueprint.Blueprint) {
		blueprint.SetMetaName(doc, "Draft only")
	}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	result, err := service.Export(ctx, id, export.SourceDraft, export.FormatJSON)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if result.Filename != "Draft-only.json" {
		t.Errorf("draft export filename = %q", result.Filename)
	}

	result, err = service.Export(ctx, id, export.SourceCommitted, export.FormatJSON)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if result.Filename != "blueprint.json" {
		t.Errorf("committed export should see the unnamed template, got %q", result.Filename)
	}
}

func TestExportFailureMapsToBadGateway(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	defer store.Close()
	raster := &fakeRaster{
		pngFunc: func(ctx context.Context, html string) ([]byte, error) {
			return nil, errors.New("no chrome here")
		},
	}
	service := New(config.Config{}, store, export.NewService(raster))
	id := createTestSession(t, service)

	_, err := service.Export(context.Background(), id, export.SourceDraft, export.FormatPNG)
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Status != 502 || domainErr.Code != "EXPORT_FAILED" {
		t.Errorf("expected 502 EXPORT_FAILED, got %v", err)
	}
}

func TestEndSession(t *testing.T) {
	service := newTestService(t)
	id := createTestSession(t, service)
	ctx := context.Background()

	if err := service.EndSession(ctx, id); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}
	if _, err := service.Workspace(ctx, id); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected ErrNotFound after EndSession, got %v", err)
	}
}

func TestCreatedAtSurvivesUpdates(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	defer store.Close()
	service := New(config.Config{}, store, export.NewService(&fakeRaster{}))
	id := createTestSession(t, service)
	ctx := context.Background()

	first, err := store.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if first.CreatedAt.IsZero() {
		t.Fatal("new sessions must record a creation time")
	}

	if _, err := service.Apply(ctx, id, blueprint.AddActor); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	second, err := store.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("updates must not change the creation time: %v != %v", second.CreatedAt, first.CreatedAt)
	}
}
