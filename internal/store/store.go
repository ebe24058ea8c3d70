package store

import (
	"context"
	"errors"

	"unibase/internal/game"
)

var ErrNoSave = errors.New("no save found")

type Store interface {
	Load(ctx context.Context) (game.Snapshot, error)
	Save(ctx context.Context, snap game.Snapshot) error
	Delete(ctx context.Context) error
}

// decode maps an empty payload to ErrNoSave and everything else through
// the snapshot decoder.
func decode(raw []byte) (game.Snapshot, error) {
	if len(raw) == 0 {
		return game.Snapshot{}, ErrNoSave
	}
	return game.DecodeSnapshot(raw)
}
