package host

import (
	"context"
	"log/slog"
	"time"

	"unibase/internal/config"
	"unibase/internal/game"
	"unibase/internal/logbook"
	"unibase/internal/notify"
	"unibase/internal/store"
)

type Host struct {
	Runner *Runner
	Log    *logbook.Book

	cleanup []func()
}

// Boot opens the configured store, restores the save and wires the optional
// Discord notifier. The runner is not started.
func Boot(ctx context.Context, cfg config.HostConfig, logger *slog.Logger) (*Host, error) {
	if logger == nil {
		logger = slog.Default()
	}
	st, closeStore, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	var notifier *notify.Discord
	if cfg.DiscordEnabled() {
		notifier, err = notify.NewDiscord(cfg.DiscordToken, cfg.DiscordChannel, logger)
		if err != nil {
			closeStore()
			return nil, err
		}
		logger.Info("discord notifier enabled", "channel_id", cfg.DiscordChannel)
	}
	h, err := assemble(ctx, st, notifier, cfg.TickEvery, logger)
	if err != nil {
		closeStore()
		return nil, err
	}
	h.cleanup = append([]func(){closeStore}, h.cleanup...)
	return h, nil
}

func NewLocal(ctx context.Context, st store.Store, every time.Duration, logger *slog.Logger) (*Host, error) {
	return assemble(ctx, st, nil, every, logger)
}

func assemble(ctx context.Context, st store.Store, notifier *notify.Discord, every time.Duration, logger *slog.Logger) (*Host, error) {
	book := logbook.New(logbook.DefaultCapacity, nil)
	book.Boot()

	h := &Host{Log: book}
	var sink game.LogSink = book
	if notifier != nil {
		sink = logbook.Tee{book, notifier}
		nctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			notifier.Run(nctx)
		}()
		h.cleanup = append(h.cleanup, func() {
			cancel()
			<-done
		})
	}

	state, err := Restore(ctx, st, sink, logger)
	if err != nil {
		h.release()
		return nil, err
	}
	h.Runner = NewRunner(state, sink, st, Options{TickEvery: every, Logger: logger})
	return h, nil
}

func (h *Host) Close(ctx context.Context) error {
	err := h.Runner.Close(ctx)
	h.release()
	return err
}

func (h *Host) release() {
	for i := len(h.cleanup) - 1; i >= 0; i-- {
		h.cleanup[i]()
	}
	h.cleanup = nil
}
