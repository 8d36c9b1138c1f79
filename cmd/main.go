package main

import (
	"context"
	"os"

	"github.com/desertthunder/t2c/internal/services"
	"github.com/desertthunder/t2c/internal/shared"
	"github.com/desertthunder/t2c/internal/tasks"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var toggl tasks.Source
	var clockify tasks.Destination

	if config.Toggl.APIToken != "" && config.Email != "" {
		if svc, err := services.NewTogglService(services.TogglOpts{
			APIToken: config.Toggl.APIToken,
			Email:    config.Email,
			BaseURL:  config.Toggl.BaseURL,
		}); err == nil {
			toggl = svc
		}
	}

	if config.Clockify.APIToken != "" {
		if svc, err := services.NewClockifyService(services.ClockifyOpts{
			APIToken: config.Clockify.APIToken,
			BaseURL:  config.Clockify.BaseURL,
		}); err == nil {
			clockify = svc
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:   config,
		Toggl:    toggl,
		Clockify: clockify,
		Logger:   logger,
	})

	app := &cli.Command{
		Name:     "t2c",
		Usage:    "Transfer time tracking data from Toggl to Clockify",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
