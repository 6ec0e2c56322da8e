package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tractionhq/traction-api/internal/middleware"
	"github.com/tractionhq/traction-api/internal/models"
	"github.com/tractionhq/traction-api/internal/services"
)

type RecommendationHandler struct {
	svc *services.RecommendationService
}

func NewRecommendationHandler(svc *services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

func (h *RecommendationHandler) Next(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return badRequest(c, "limit must be an integer")
	}
	recs, err := h.svc.Next(userID, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recs)
}

func (h *RecommendationHandler) SuggestWeek(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.SuggestWeekRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	limit := 0
	if req.Limit != nil {
		limit = *req.Limit
	}
	recs, err := h.svc.SuggestWeek(userID, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recs)
}
