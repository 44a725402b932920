package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/edvalho/recipelint/pkg/cmd"
	"github.com/edvalho/recipelint/pkg/eventbus"
	"github.com/edvalho/recipelint/pkg/events"
	"github.com/edvalho/recipelint/pkg/log"
	"github.com/edvalho/recipelint/pkg/validation"
)

var ErrRecipeFailed = errors.New("recipe validation failed")

func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Validate a recipe document and print the report",
		ArgsUsage: "<recipe.json>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "contracts-url",
				Usage:   "Contract source URL (file path, redis:// or postgres://)",
				Value:   "./contracts",
				Sources: cli.EnvVars("CONTRACTS_URL"),
			},
			&cli.StringFlag{
				Name:  "event-bus",
				Usage: "Publish validation events to this bus (kafka, gochannel)",
				Value: "",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the full report as JSON instead of a summary",
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
			logger := log.WithModule("validate")

			path := command.Args().First()
			if path == "" {
				return errors.New("a recipe file is required")
			}

			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read recipe: %w", err)
			}

			source := cmd.NewContractSource(ctx, logger, command.String("contracts-url"))
			defer func() {
				if err := source.Close(ctx); err != nil {
					logger.Error("Failed to close contract source", "error", err)
				}
			}()

			runner := validation.NewRunner(source, logger)

			started := time.Now()
			report := runner.Run(ctx, raw)
			elapsed := time.Since(started)

			if busProvider := command.String("event-bus"); busProvider != "" {
				bus := cmd.NewEventBus(busProvider, logger)
				defer func() {
					if err := bus.Close(); err != nil {
						logger.Error("Failed to close event bus", "error", err)
					}
				}()

				if err := publishReport(ctx, bus, path, report, elapsed); err != nil {
					logger.Error("Failed to publish validation event", "error", err)
				}
			}

			if command.Bool("json") {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				if err := encoder.Encode(report); err != nil {
					return err
				}
			} else {
				fmt.Print(report.Summary())
			}

			if !report.Passed() {
				return ErrRecipeFailed
			}

			return nil
		},
	}
}

// publishReport emits a lifecycle event matching the verdict.
func publishReport(
	ctx context.Context,
	bus eventbus.EventBus,
	path string,
	report *validation.Report,
	elapsed time.Duration,
) error {
	base := events.BaseEvent{
		ID:         bus.GenerateID(),
		Timestamp:  time.Now().UTC(),
		RecipeName: report.RecipeName,
		RecipePath: path,
	}

	if report.Passed() {
		base.Type = events.RecipeValidatedEvent

		return bus.Publish(ctx, report.RunID, events.RecipeValidated{
			BaseEvent: base,
			RunID:     report.RunID,
			Warnings:  report.Warnings,
			Issues:    report.Issues,
			Duration:  elapsed,
		})
	}

	base.Type = events.RecipeValidationFailedEvent

	return bus.Publish(ctx, report.RunID, events.RecipeValidationFailed{
		BaseEvent: base,
		RunID:     report.RunID,
		Errors:    report.Errors,
		Warnings:  report.Warnings,
		Issues:    report.Issues,
		Duration:  elapsed,
	})
}
