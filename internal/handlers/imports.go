package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tractionhq/traction-api/internal/middleware"
	"github.com/tractionhq/traction-api/internal/services"
)

type ImportHandler struct {
	svc *services.ImportService
}

func NewImportHandler(svc *services.ImportService) *ImportHandler {
	return &ImportHandler{svc: svc}
}

// Trello imports a Trello board export. The raw export goes in the body;
// format selects the parser.
func (h *ImportHandler) Trello(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	body := c.Body()
	if len(body) == 0 {
		return badRequest(c, "request body is empty")
	}
	format := c.Query("format", "json")

	switch format {
	case "json":
		result, err := h.svc.FromTrelloJSON(userID, body)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(result)
	case "csv":
		result, err := h.svc.FromTrelloCSV(userID, body)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(result)
	default:
		return badRequest(c, "format must be json or csv")
	}
}
