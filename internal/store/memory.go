package store

import (
	"context"
	"sync"

	"unibase/internal/game"
)

// MemoryStore keeps the encoded save in process. Used by tests and by
// hosts that run without persistence.
type MemoryStore struct {
	mu  sync.RWMutex
	raw []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (game.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return decode(s.raw)
}

func (s *MemoryStore) Save(_ context.Context, snap game.Snapshot) error {
	raw, err := game.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.raw = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context) error {
	s.mu.Lock()
	s.raw = nil
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Raw() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.raw...)
}

func (s *MemoryStore) SetRaw(raw []byte) {
	s.mu.Lock()
	s.raw = append([]byte(nil), raw...)
	s.mu.Unlock()
}
