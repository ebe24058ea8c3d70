package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"unibase/internal/game"
)

type FileStore struct {
	path string
}

func NewFileStore(dir, key string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create save dir: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, key+".json")}, nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(_ context.Context) (game.Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return game.Snapshot{}, ErrNoSave
		}
		return game.Snapshot{}, fmt.Errorf("read save: %w", err)
	}
	return decode(raw)
}

func (s *FileStore) Save(_ context.Context, snap game.Snapshot) error {
	raw, err := game.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace save: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete save: %w", err)
	}
	return nil
}
