package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/edvalho/recipelint/pkg/cmd"
	"github.com/edvalho/recipelint/pkg/log"
	"github.com/edvalho/recipelint/pkg/otelhelper"
	"github.com/edvalho/recipelint/pkg/validation"
)

const defaultPort = 9098

func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the validation API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "contracts-url",
				Usage:   "Contract source URL (file path, redis:// or postgres://)",
				Value:   "./contracts",
				Sources: cli.EnvVars("CONTRACTS_URL"),
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

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing Recipelint API")

			source := cmd.NewContractSource(ctx, logger, command.String("contracts-url"))
			defer func() {
				if err := source.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close contract source", "error", err)
				}
			}()

			runner := validation.NewRunner(source, logger)

			tracer, err := otelhelper.NewTracer(ctx, "recipelint-api")
			if err != nil {
				logger.WarnContext(ctx, "Tracing disabled", "error", err)
			} else {
				runner = runner.WithTracer(tracer)
			}

			api := NewAPI(logger, runner, source)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}
}
