package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"unibase/internal/game"
)

func sampleSnapshot() game.Snapshot {
	st := game.NewState()
	st.Users = 420
	st.Fund = 12_500
	st.StageIndex = game.ResolveStage(st.Fund)
	st.PrestigeLevel = 1
	st.CompetitorUsers = 8_000
	st.Units["creator_junior"] = 3
	return st.Snapshot()
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Load(ctx); !errors.Is(err, ErrNoSave) {
		t.Fatalf("empty store: expected ErrNoSave, got %v", err)
	}

	want := sampleSnapshot()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Users != want.Users || got.Fund != want.Fund || got.PrestigeLevel != want.PrestigeLevel {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if got.State().Units["creator_junior"] != 3 {
		t.Fatalf("units lost: %+v", got.Units)
	}

	want.Fund = 99
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, _ := s.Load(ctx); got.Fund != 99 {
		t.Fatalf("overwrite not visible, fund=%v", got.Fund)
	}

	if err := s.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Load(ctx); !errors.Is(err, ErrNoSave) {
		t.Fatalf("after delete: expected ErrNoSave, got %v", err)
	}
	if err := s.Delete(ctx); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "saves"), "test_save")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	exerciseStore(t, fs)
}

func TestFileStorePermissionsAndCorruption(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), "test_save")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	ctx := context.Background()
	if err := fs.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(fs.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("perm got %o want 600", perm)
	}

	if err := os.WriteFile(fs.Path(), []byte("{half"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := fs.Load(ctx); !errors.Is(err, game.ErrCorruptSnapshot) {
		t.Fatalf("expected ErrCorruptSnapshot, got %v", err)
	}

	if err := os.WriteFile(fs.Path(), nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := fs.Load(ctx); !errors.Is(err, ErrNoSave) {
		t.Fatalf("empty file: expected ErrNoSave, got %v", err)
	}
}

func TestSQLiteStore(t *testing.T) {
	ss, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "db", "unibase.db"), "test_save")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { ss.Close() })
	exerciseStore(t, ss)
}

func TestSQLiteStoreKeysAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unibase.db")
	ctx := context.Background()
	a, err := OpenSQLite(ctx, path, "a")
	if err != nil {
		t.Fatalf("open a: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	b, err := OpenSQLite(ctx, path, "b")
	if err != nil {
		t.Fatalf("open b: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	if err := a.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := b.Load(ctx); !errors.Is(err, ErrNoSave) {
		t.Fatalf("key b should be empty, got %v", err)
	}
}
