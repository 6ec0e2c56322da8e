package handlers

import (
	"github.com/gofiber/fiber/v2"
)

func Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "traction-api",
		"status":  "ok",
	})
}

func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
