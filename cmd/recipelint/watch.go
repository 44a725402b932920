package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/edvalho/recipelint/pkg/cmd"
	"github.com/edvalho/recipelint/pkg/log"
	"github.com/edvalho/recipelint/pkg/validation"
)

func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:    "watch",
		Aliases: []string{"w"},
		Usage:   "Periodically re-validate a directory of recipes and publish results",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "recipes-dir",
				Usage:    "Directory containing recipe documents",
				Required: true,
				Sources:  cli.EnvVars("RECIPES_DIR"),
			},
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron expression for validation sweeps",
				Value:   "@every 1m",
				Sources: cli.EnvVars("WATCH_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "contracts-url",
				Usage:   "Contract source URL (file path, redis:// or postgres://)",
				Value:   "./contracts",
				Sources: cli.EnvVars("CONTRACTS_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("watcher")
			logger.InfoContext(ctx, "Initializing recipe watcher")

			source := cmd.NewContractSource(ctx, logger, command.String("contracts-url"))
			defer func() {
				if err := source.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close contract source", "error", err)
				}
			}()

			bus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := bus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			watcher := NewWatcher(
				logger,
				validation.NewRunner(source, logger),
				bus,
				command.String("recipes-dir"),
				command.String("schedule"),
			)

			return watcher.Start(ctx)
		},
	}
}
