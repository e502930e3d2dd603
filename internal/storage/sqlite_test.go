package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "journal.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreMissingKey(t *testing.T) {
	s := newTestStore(t)
	doc, found, err := s.Load(context.Background(), "absent")
	if err != nil || found || doc != nil {
		t.Fatalf("expected not found, got doc=%q found=%v err=%v", doc, found, err)
	}
	v, err := s.Version(context.Background(), "absent")
	if err != nil || v != 0 {
		t.Fatalf("expected version 0, got %d err=%v", v, err)
	}
}

func TestSQLiteStoreSaveLoadAndVersioning(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Save(ctx, "k", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, "k", []byte(`[]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	doc, found, err := s.Load(ctx, "k")
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if string(doc) != `[]` {
		t.Fatalf("expected last write to win, got %s", doc)
	}

	v, err := s.Version(ctx, "k")
	if err != nil || v != 2 {
		t.Fatalf("expected version 2, got %d err=%v", v, err)
	}
}

func TestSQLiteStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Save(ctx, "k", []byte(`["x"]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Close()

	// Second open must find migrations already applied.
	s, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	doc, found, err := s.Load(ctx, "k")
	if err != nil || !found || string(doc) != `["x"]` {
		t.Fatalf("unexpected reload: doc=%s found=%v err=%v", doc, found, err)
	}
}

func TestSQLiteStoreRejectsEmptyKey(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(context.Background(), "", nil); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}
