package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/tractionhq/traction-api/internal/apperrors"
)

// respondError maps taxonomy errors onto the wire envelope. Anything
// outside the taxonomy is a 500 with a generic body; the detail goes to
// the log, not the client.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		body := fiber.Map{"message": appErr.Message}
		if appErr.Details != nil {
			body["details"] = appErr.Details
		}
		return c.Status(appErr.StatusCode).JSON(fiber.Map{"error": body})
	}
	log.Printf("internal error: %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{"message": "internal server error"},
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": fiber.Map{"message": message},
	})
}
