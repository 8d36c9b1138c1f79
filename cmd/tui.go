package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/t2c/internal/models"
	"github.com/desertthunder/t2c/internal/shared"
	"github.com/desertthunder/t2c/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for the migration.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	snapshotPath := cmd.String("snapshot")

	if r.clockify == nil {
		return fmt.Errorf("%w: Clockify service not initialized", shared.ErrServiceUnavailable)
	}

	var snapshot models.Snapshot
	if err := shared.ReadJSONFile(snapshotPath, &snapshot); err != nil {
		return err
	}
	if len(snapshot) == 0 {
		return shared.ErrEmptySnapshot
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/t2c-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, snapshot, r.clockify, r.transferOpts(nil), fileLogger)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "snapshot",
				Aliases: []string{"s"},
				Usage:   "Path to the snapshot file",
				Value:   "toggl.json",
			},
		},
		Action: r.TUI,
	}
}
