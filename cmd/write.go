package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/t2c/internal/models"
	"github.com/desertthunder/t2c/internal/shared"
	"github.com/desertthunder/t2c/internal/tasks"
	"github.com/urfave/cli/v3"
)

// WriteEntities fetches the entities held by one of the two tools and writes
// them to a local JSON file. For Toggl the result is the transfer snapshot;
// for Clockify it is a per-workspace dump of the name-addressable groups.
func (r *Runner) WriteEntities(ctx context.Context, cmd *cli.Command) error {
	tool := cmd.String("tool")
	outputPath := cmd.String("output")

	if err := r.config.Validate(); err != nil {
		return err
	}

	switch tool {
	case "toggl":
		if outputPath == "" {
			outputPath = "toggl.json"
		}
		return r.writeTogglSnapshot(ctx, outputPath)
	case "clockify":
		if outputPath == "" {
			outputPath = "clockify.json"
		}
		return r.writeClockifyEntities(ctx, outputPath)
	default:
		return fmt.Errorf("%w: invalid tool '%s' (must be 'toggl' or 'clockify')", shared.ErrInvalidArgument, tool)
	}
}

func (r *Runner) writeTogglSnapshot(ctx context.Context, outputPath string) error {
	extractor := tasks.NewExtractor(r.toggl, tasks.ExtractOpts{}, r.logger)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			r.writePlain("📥 %s\n", update.Message)
		}
	}()

	snapshot, err := extractor.BuildSnapshot(ctx, progressCh, r.config.Workspaces)
	close(progressCh)
	if err != nil {
		return err
	}

	if err := shared.WriteJSONFile(outputPath, snapshot); err != nil {
		return err
	}

	r.writePlain("\n✓ Wrote %d workspace(s) to %s\n", len(snapshot), outputPath)
	return nil
}

func (r *Runner) writeClockifyEntities(ctx context.Context, outputPath string) error {
	if r.clockify == nil {
		return fmt.Errorf("%w: Clockify service not initialized", shared.ErrServiceUnavailable)
	}

	workspaces, err := r.clockify.Workspaces(ctx)
	if err != nil {
		return fmt.Errorf("%w: listing Clockify workspaces: %v", shared.ErrAPIRequest, err)
	}

	dump := make(map[string]map[string][]models.ClockifyEntity, len(workspaces))
	for _, ws := range workspaces {
		groups := make(map[string][]models.ClockifyEntity)
		for _, group := range []models.EntityGroup{models.Clients, models.Projects, models.Tags} {
			entities, err := r.clockify.Entities(ctx, ws.ID, group)
			if err != nil {
				return fmt.Errorf("%w: listing %s in %s: %v", shared.ErrAPIRequest, group, ws.Name, err)
			}
			groups[group.String()] = entities
		}
		dump[ws.Name] = groups
		r.writePlain("📥 Fetched entities for workspace %s\n", ws.Name)
	}

	if err := shared.WriteJSONFile(outputPath, dump); err != nil {
		return err
	}

	r.writePlain("\n✓ Wrote %d workspace(s) to %s\n", len(dump), outputPath)
	return nil
}

func writeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "write",
		Usage: "Fetch entities from a tool and write them to a JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "tool",
				Aliases: []string{"t"},
				Usage:   "Tool to fetch from (toggl or clockify)",
				Value:   "toggl",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (defaults to <tool>.json)",
			},
		},
		Action: r.WriteEntities,
	}
}
