// Package main provides the recipelint CLI and API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/edvalho/recipelint/pkg/contracts"
	"github.com/edvalho/recipelint/pkg/validation"
	"github.com/edvalho/recipelint/pkg/web"
)

type API struct {
	logger *slog.Logger
	runner *validation.Runner
	source contracts.Source
}

func NewAPI(logger *slog.Logger, runner *validation.Runner, source contracts.Source) *API {
	return &API{
		logger: logger,
		runner: runner,
		source: source,
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.runner, a.source)

	app := fiber.New(fiber.Config{
		BodyLimit:    web.MaxRecipeBytes,
		ErrorHandler: web.ErrorHandler,
	})
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Recipelint API")
	})

	app.Post("/validate", handlers.ValidateRecipe)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
