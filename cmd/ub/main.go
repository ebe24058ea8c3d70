package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	cl "unibase/internal/cli"
	"unibase/internal/config"
	"unibase/internal/game"
	"unibase/internal/host"
	"unibase/internal/logbook"
	"unibase/internal/store"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	cliCfg := config.LoadCLIFromEnv()
	apiBase := cliCfg.APIBaseURL

	root := &cobra.Command{
		Use:          "ub",
		Short:        "Universal Base App progression simulator",
		SilenceUsage: true,
	}

	root.AddCommand(
		newPlayCmd(),
		newStatusCmd(),
		newResetCmd(),
		newRemoteCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newPlayCmd() *cobra.Command {
	var lineMode bool
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Run the simulation locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadHostFromEnv()
			if err != nil {
				return err
			}
			interactive := !lineMode && term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))

			logger, closeLog, err := playLogger(cfg, interactive)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx := cmd.Context()
			h, err := host.Boot(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := h.Close(closeCtx); err != nil {
					printError("Final save failed: " + err.Error())
				}
			}()

			h.Runner.Start(ctx)
			if interactive {
				return runTUI(h.Runner, h.Log)
			}
			return runLineMode(ctx, h.Runner, h.Log, os.Stdin, os.Stdout)
		},
	}
	cmd.Flags().BoolVar(&lineMode, "lines", false, "use the line-mode console even on a terminal")
	return cmd
}

// playLogger keeps slog off the terminal while the TUI owns it.
func playLogger(cfg config.HostConfig, interactive bool) (*slog.Logger, func(), error) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if !interactive {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), func() {}, nil
	}
	if err := os.MkdirAll(cfg.SaveDir, 0o700); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(cfg.SaveDir, "ub.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return slog.New(slog.NewJSONHandler(io.Discard, opts)), func() {}, nil
	}
	return slog.New(slog.NewJSONHandler(f, opts)), func() { f.Close() }, nil
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the saved Base App without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadHostFromEnv()
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
			st, closeStore, err := store.Open(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			book := logbook.New(0, nil)
			state, err := host.Restore(cmd.Context(), st, book, logger)
			if err != nil {
				return err
			}
			renderEntries(book.Entries())
			renderView(game.NewView(state))
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the local save",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadHostFromEnv()
			if err != nil {
				return err
			}
			if !yes {
				ok, err := promptConfirm(fmt.Sprintf("Delete save %q from the %s store?", cfg.SaveKey, cfg.StoreDriver))
				if err != nil {
					return err
				}
				if !ok {
					printInfo("Reset cancelled.")
					return nil
				}
			}
			logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
			st, closeStore, err := store.Open(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()
			if err := st.Delete(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Save deleted. Next `ub play` starts a fresh Base App.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newRemoteCmd(apiBase *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Drive a running unibase-api host",
	}
	cmd.PersistentFlags().StringVar(apiBase, "api", *apiBase, "API base URL")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show the remote Base App",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()
				v, err := newClient(apiBase).State(ctx)
				if err != nil {
					return err
				}
				renderView(v)
				return nil
			},
		},
		remoteCommand(apiBase, "post", "Basepost for users", func(ctx context.Context, c *cl.Client, _ []string) (game.Outcome, error) {
			resp, err := c.ManualPost(ctx)
			return resp.Outcome, err
		}),
		remoteCommand(apiBase, "pitch", "Pitch investors for Fund", func(ctx context.Context, c *cl.Client, _ []string) (game.Outcome, error) {
			resp, err := c.PitchInvestors(ctx)
			return resp.Outcome, err
		}),
		remoteCommand(apiBase, "buy [unit-id]", "Hire or launch a unit", func(ctx context.Context, c *cl.Client, args []string) (game.Outcome, error) {
			id, err := unitFromArgsOrPrompt(args)
			if err != nil {
				return game.Outcome{}, err
			}
			resp, err := c.PurchaseUnit(ctx, id)
			return resp.Outcome, err
		}),
		remoteCommand(apiBase, "ipo", "Take the Base App public", func(ctx context.Context, c *cl.Client, _ []string) (game.Outcome, error) {
			resp, err := c.Prestige(ctx)
			return resp.Outcome, err
		}),
		newRemoteLogCmd(apiBase),
	)
	return cmd
}

func remoteCommand(apiBase *string, use, short string, fn func(context.Context, *cl.Client, []string) (game.Outcome, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := fn(ctx, newClient(apiBase), args)
			if err != nil {
				var apiErr *cl.APIError
				if errors.As(err, &apiErr) && apiErr.Kind != "" {
					printWarn(apiErr.Message)
					return nil
				}
				return err
			}
			renderOutcome(out)
			return nil
		},
	}
}

func newRemoteLogCmd(apiBase *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the remote console",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			resp, err := newClient(apiBase).Log(ctx, limit)
			if err != nil {
				return err
			}
			renderEntries(resp.Entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of lines")
	return cmd
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func unitFromArgsOrPrompt(args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	ids := make([]string, 0, len(game.Units))
	for _, u := range game.Units {
		ids = append(ids, u.ID)
	}
	return promptChoice("Unit", ids, ids[0])
}
