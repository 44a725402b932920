package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

// ErrorHandler maps errors escaping a handler onto problem documents so
// every error response the API produces has the same shape, the framework's
// own (body limit, routing) included.
func ErrorHandler(c fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusBadRequest:
			return badRequest(c, fiberErr.Message)
		case fiber.StatusRequestEntityTooLarge:
			return payloadTooLarge(c, fiberErr.Message)
		}
	}

	return internalError(c, err)
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func payloadTooLarge(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(413).
		WithInstance(c.Path()).
		WithType("payload_too_large").
		WithDetail(detail)

	return c.Status(fiber.StatusRequestEntityTooLarge).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}
