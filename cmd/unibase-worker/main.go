package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"unibase/internal/config"
	"unibase/internal/host"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadHostFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	h, err := host.Boot(ctx, cfg, logger)
	if err != nil {
		logger.Error("host boot failed", "err", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := h.Close(closeCtx); err != nil {
			logger.Error("final save failed", "err", err)
		}
	}()

	if cfg.WorkerRunOnce {
		for i := 0; i < cfg.WorkerTicks; i++ {
			h.Runner.Tick()
		}
		v := h.Runner.View()
		logger.Info("worker run-once completed", "ticks", cfg.WorkerTicks,
			"users", v.Users, "fund", v.Fund, "stage", v.Stage.ID, "prestige_level", v.PrestigeLevel)
		return
	}

	h.Runner.Start(ctx)
	logger.Info("worker started", "tick_every", cfg.TickEvery.String(), "store", cfg.StoreDriver)
	<-ctx.Done()
	logger.Info("worker shutdown")
}
