package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/t2c/internal/repositories"
	"github.com/desertthunder/t2c/internal/shared"
	"github.com/urfave/cli/v3"
)

// History lists past transfer runs from the local database.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	runID := cmd.String("run-id")
	workspace := cmd.String("workspace")
	asJSON := cmd.Bool("json")

	if r.config.Database.Path == "" {
		return fmt.Errorf("%w: database.path is not configured", shared.ErrInvalidConfig)
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	repo := repositories.NewRunRepository(db)
	records, err := repo.List(map[string]any{
		"run_id":    runID,
		"workspace": workspace,
	})
	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(records, true)
	}

	if len(records) == 0 {
		r.writePlain("No transfer runs recorded.\n")
		return nil
	}

	r.writePlainHeader("Transfer History")
	lastRun := ""
	for _, record := range records {
		if record.RunID != lastRun {
			r.writePlain("\nRun %s (%s)\n", record.RunID, record.StartedAt.Format("2006-01-02 15:04:05"))
			lastRun = record.RunID
		}
		r.writePlain("  %-20s %-12s created %d, skipped %d, failed %d\n",
			record.Workspace, record.Group, record.Created, record.Skipped, record.Failed)
	}

	return nil
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past transfer runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "run-id",
				Usage: "Filter by run ID",
			},
			&cli.StringFlag{
				Name:    "workspace",
				Aliases: []string{"w"},
				Usage:   "Filter by workspace name",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output as JSON",
			},
		},
		Action: r.History,
	}
}
