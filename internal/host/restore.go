package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"unibase/internal/game"
	"unibase/internal/store"
)

// Restore loads the saved economy. A missing save starts fresh silently; an
// unreadable one starts fresh with a warning line.
func Restore(ctx context.Context, st store.Store, sink game.LogSink, logger *slog.Logger) (game.State, error) {
	if logger == nil {
		logger = slog.Default()
	}
	snap, err := st.Load(ctx)
	switch {
	case err == nil:
		sink.Append(game.TagSystem, "Previous Base App session loaded.")
		return snap.State(), nil
	case errors.Is(err, store.ErrNoSave):
		return game.NewState(), nil
	case errors.Is(err, game.ErrCorruptSnapshot):
		logger.Warn("discarding unreadable save", "err", err)
		sink.Append(game.TagWarn, "Saved session could not be read. Starting a fresh Base App.")
		return game.NewState(), nil
	default:
		return game.State{}, fmt.Errorf("restore save: %w", err)
	}
}
