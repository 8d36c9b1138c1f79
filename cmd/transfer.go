package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/t2c/internal/formatter"
	"github.com/desertthunder/t2c/internal/models"
	"github.com/desertthunder/t2c/internal/repositories"
	"github.com/desertthunder/t2c/internal/shared"
	"github.com/desertthunder/t2c/internal/tasks"
	"github.com/urfave/cli/v3"
)

// TransferRun runs a full Toggl → Clockify migration for the configured
// workspaces.
func (r *Runner) TransferRun(ctx context.Context, cmd *cli.Command) error {
	snapshotPath := cmd.String("snapshot")
	reportPath := cmd.String("report")
	names := cmd.StringSlice("workspace")
	refresh := cmd.Bool("refresh")

	if err := r.config.Validate(); err != nil {
		return err
	}
	if r.clockify == nil {
		return fmt.Errorf("%w: Clockify service not initialized", shared.ErrServiceUnavailable)
	}

	snapshot, err := r.loadSnapshot(ctx, snapshotPath, refresh)
	if err != nil {
		return err
	}

	r.logger.Info("starting transfer", "workspaces", len(snapshot), "snapshot", snapshotPath)
	r.writePlain("Starting transfer...\n\n")

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.LoadIndex:
				r.writePlain("📇 %s\n", update.Message)
			case tasks.CreateEntities:
				r.writePlain("   %s\n", update.Message)
			case tasks.CreateBatch:
				r.writePlain("📦 %s\n", update.Message)
			case tasks.WorkspaceComplete:
				r.writePlain("✓ %s\n", update.Message)
			}
		}
	}()

	engine := tasks.NewTransferEngine(r.clockify, snapshot, r.transferOpts(names), r.logger)
	result, err := engine.Run(ctx, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	// Output summary
	r.writePlain("\n")
	r.writePlainHeader("Transfer Complete!")
	r.writePlain("Run ID: %s\n", result.RunID)
	for _, ws := range result.Workspaces {
		r.writePlain("\n%s\n", ws.Workspace.Name)
		for _, group := range ws.Groups {
			r.writePlain("  %-12s created %d, skipped %d, failed %d\n",
				group.Group, group.Created, group.Skipped, group.Failed)
		}
	}

	totals := result.Totals()
	r.writePlain("\nTotals: %d created, %d skipped, %d failed\n", totals.Created, totals.Skipped, totals.Failed)

	if err := r.saveRunHistory(result); err != nil {
		r.logger.Warn("failed to persist run history", "error", err)
	}

	if reportPath != "" {
		if err := formatter.WriteReport(result, reportPath); err != nil {
			return err
		}
		r.writePlain("\nReport written to %s\n", reportPath)
	}

	return nil
}

// loadSnapshot reads the snapshot file, extracting a fresh one from Toggl
// when the file is absent or a refresh was requested.
func (r *Runner) loadSnapshot(ctx context.Context, path string, refresh bool) (models.Snapshot, error) {
	if !refresh {
		var snapshot models.Snapshot
		err := shared.ReadJSONFile(path, &snapshot)
		if err == nil {
			return snapshot, nil
		}
		if !errors.Is(err, shared.ErrSnapshotNotFound) {
			return nil, err
		}
		r.logger.Info("snapshot not found, extracting from Toggl", "path", path)
	}

	extractor := tasks.NewExtractor(r.toggl, tasks.ExtractOpts{}, r.logger)
	snapshot, err := extractor.BuildSnapshot(ctx, nil, r.config.Workspaces)
	if err != nil {
		return nil, err
	}
	if err := shared.WriteJSONFile(path, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// saveRunHistory records one row per workspace and group so past runs can be
// inspected with the history command. A missing database path disables
// persistence.
func (r *Runner) saveRunHistory(result *tasks.TransferRunResult) error {
	if r.config.Database.Path == "" {
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	repo := repositories.NewRunRepository(db)
	for _, ws := range result.Workspaces {
		for _, group := range ws.Groups {
			record := &models.RunRecord{
				RunID:     result.RunID,
				Workspace: ws.Workspace.Name,
				Group:     group.Group.String(),
				Created:   group.Created,
				Skipped:   group.Skipped,
				Failed:    group.Failed,
				StartedAt: result.StartedAt,
			}
			if err := repo.Create(record); err != nil {
				return err
			}
		}
	}
	return nil
}

// transferCommand handles the snapshot → Clockify migration.
func transferCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "Transfer time tracking data to Clockify",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the full Toggl → Clockify migration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "snapshot",
						Aliases: []string{"s"},
						Usage:   "Path to the snapshot file",
						Value:   "toggl.json",
					},
					&cli.StringSliceFlag{
						Name:    "workspace",
						Aliases: []string{"w"},
						Usage:   "Restrict the run to these workspace names (repeatable)",
					},
					&cli.StringFlag{
						Name:  "report",
						Usage: "Write a run report to this path (.csv, .md or .txt)",
					},
					&cli.BoolFlag{
						Name:  "refresh",
						Usage: "Re-extract the snapshot from Toggl before transferring",
					},
				},
				Action: r.TransferRun,
			},
		},
	}
}
