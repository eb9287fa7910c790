// Package main is the entry point for vud, the venue Wi-Fi usage dashboard.
// Without a subcommand it runs the TUI; subcommands expose the same
// operations for scripts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/j-veylop/venue-usage-tui/internal/config"
	"github.com/j-veylop/venue-usage-tui/internal/logger"
	"github.com/j-veylop/venue-usage-tui/internal/services"
	"github.com/j-veylop/venue-usage-tui/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "vud",
		Short: "Venue Wi-Fi usage dashboard",
		Long: `vud fetches daily Wi-Fi usage per venue location, renders charts into a
zip bundle and ranks locations by total usage.

Run without arguments to open the terminal dashboard.`,
		Version:       version.Info(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context())
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	root.AddCommand(
		newRosterCommand(),
		newSessionCommand(),
		newCheckCommand(),
		newExportCommand(),
		newSummaryCommand(),
		newRunsCommand(),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}

// withManager loads configuration, sets up console logging and hands a
// service manager to fn, closing it afterwards.
func withManager(fn func(cfg *config.Config, mgr *services.Manager) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	closeLog, err := logger.Init(logger.Options{File: cfg.LogFile, Level: cfg.LogLevel, Console: true})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = closeLog() }()

	mgr, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil {
			logger.Warn("error closing services", "error", closeErr)
		}
	}()

	return fn(cfg, mgr)
}
