package host

import (
	"context"
	"errors"
	"testing"

	"unibase/internal/game"
	"unibase/internal/logbook"
	"unibase/internal/store"
)

type brokenStore struct{ store.MemoryStore }

func (*brokenStore) Load(context.Context) (game.Snapshot, error) {
	return game.Snapshot{}, errors.New("connection refused")
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	saved := game.NewState()
	saved.Users = 77
	saved.Fund = 1_200
	withSave := store.NewMemoryStore()
	if err := withSave.Save(ctx, saved.Snapshot()); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	corrupt := store.NewMemoryStore()
	corrupt.SetRaw([]byte("{oops"))

	tests := []struct {
		name      string
		st        store.Store
		wantUsers float64
		wantStage int
		wantTag   game.Tag
		wantErr   bool
	}{
		{name: "no save", st: store.NewMemoryStore(), wantTag: ""},
		{name: "saved", st: withSave, wantUsers: 77, wantStage: 1, wantTag: game.TagSystem},
		{name: "corrupt", st: corrupt, wantTag: game.TagWarn},
		{name: "backend error", st: &brokenStore{}, wantErr: true},
	}
	for _, tc := range tests {
		book := logbook.New(0, nil)
		got, err := Restore(ctx, tc.st, book, nil)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if got.Users != tc.wantUsers || got.StageIndex != tc.wantStage {
			t.Fatalf("%s: got %+v", tc.name, got)
		}
		if tc.wantTag == "" {
			if book.Len() != 0 {
				t.Fatalf("%s: expected no log lines, got %v", tc.name, book.Entries())
			}
			continue
		}
		if book.Len() != 1 || book.Entries()[0].Tag != tc.wantTag {
			t.Fatalf("%s: unexpected log %v", tc.name, book.Entries())
		}
	}
}

func TestNewLocalBootsAndRestores(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	saved := game.NewState()
	saved.PrestigeLevel = 2
	if err := mem.Save(ctx, saved.Snapshot()); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	h, err := NewLocal(ctx, mem, 0, nil)
	if err != nil {
		t.Fatalf("boot: %v", err)
	}
	if got := h.Runner.View().PrestigeLevel; got != 2 {
		t.Fatalf("prestige got %d", got)
	}
	entries := h.Log.Entries()
	if len(entries) < 3 || entries[len(entries)-1].Message != "Previous Base App session loaded." {
		t.Fatalf("unexpected boot log %v", entries)
	}
	if err := h.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
}
