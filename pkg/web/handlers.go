// Package web provides the HTTP endpoints for the recipe validation API.
package web

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/edvalho/recipelint/pkg/contracts"
	"github.com/edvalho/recipelint/pkg/validation"
)

// MaxRecipeBytes bounds the accepted request body. Recipes larger than this
// are rejected before parsing.
const MaxRecipeBytes = 4 << 20

type APIHandlers struct {
	runner *validation.Runner
	source contracts.Source
}

func NewAPIHandlers(runner *validation.Runner, source contracts.Source) *APIHandlers {
	return &APIHandlers{
		runner: runner,
		source: source,
	}
}

// ValidateRecipe accepts a recipe document as the request body and returns
// the full validation report. Validation findings are part of the report, not
// HTTP errors: a failing recipe still gets a 200 with verdict "fail".
func (h *APIHandlers) ValidateRecipe(c fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return badRequest(c, "Request body must contain a recipe document")
	}

	if len(body) > MaxRecipeBytes {
		return payloadTooLarge(c, "Recipe document exceeds the size limit")
	}

	report := h.runner.Run(c.Context(), body)

	return c.JSON(report)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	err := h.source.HealthCheck(c.Context())

	status := "healthy"
	message := "Recipelint API is healthy"
	httpStatus := http.StatusOK

	if err != nil {
		status = "unhealthy"
		message = "Recipelint API is unhealthy: " + err.Error()
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}
