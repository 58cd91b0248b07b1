package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"blueprint/api/internal/blueprint"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	state := sampleState()
	if err := store.Save(ctx, "ses_mem", state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, "ses_mem")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !blueprint.Equal(loaded.Draft, state.Draft) {
		t.Error("draft changed in the round trip")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	if err := store.Save(ctx, "ses_mem", sampleState()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := store.Load(ctx, "ses_mem"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestMemoryStoreDeleteAndMissing(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	if _, err := store.Load(ctx, "ses_none"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := store.Save(ctx, "ses_mem", sampleState()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Delete(ctx, "ses_mem"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load(ctx, "ses_mem"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
