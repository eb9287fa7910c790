package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/venue-usage-tui/internal/app"
	"github.com/j-veylop/venue-usage-tui/internal/config"
	"github.com/j-veylop/venue-usage-tui/internal/logger"
	"github.com/j-veylop/venue-usage-tui/internal/services"
	"github.com/j-veylop/venue-usage-tui/internal/ui/tabs/export"
	"github.com/j-veylop/venue-usage-tui/internal/ui/tabs/history"
	"github.com/j-veylop/venue-usage-tui/internal/ui/tabs/info"
	"github.com/j-veylop/venue-usage-tui/internal/ui/tabs/location"
	"github.com/j-veylop/venue-usage-tui/internal/ui/tabs/summary"
)

// runTUI starts the dashboard. Logs go to the log file only so they do not
// tear the alternate screen.
func runTUI(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	closeLog, err := logger.Init(logger.Options{File: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = closeLog() }()

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)
	state := model.GetState()
	cmds := model.GetCommands()
	model.SetTabs([]app.Tab{
		location.New(state, cmds),
		export.New(state, cmds),
		summary.New(state, cmds),
		history.New(state, cmds),
		info.New(state, cmds, cfg),
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-ctx.Done()
		p.Send(tea.Quit())
	}()

	logger.Info("starting dashboard", "projects", len(cfg.Projects), "export_dir", cfg.ExportDir)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	// A run still in flight is cancelled; its partial result is discarded.
	state.CancelRun()
	return nil
}
