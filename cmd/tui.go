package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/bcx/internal/formatter"
	"github.com/desertthunder/bcx/internal/shared"
	"github.com/desertthunder/bcx/internal/tasks"
	"github.com/desertthunder/bcx/internal/ui"
)

// TUI launches the interactive playlist browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	// Logs would otherwise draw over the TUI.
	fileLogger, err := shared.NewFileLogger("./tmp/bcx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	conn, err := r.connection()
	if err != nil {
		return err
	}

	exporter := tasks.NewExporter(conn, shared.WithLogger(r.logger, "component", "export"))
	model := ui.NewModel(ctx, conn, exporter, ui.Options{
		Format:    format,
		OutputDir: cmd.String("output"),
		PageSize:  cmd.Int("page-size"),
	})

	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
