package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tractionhq/traction-api/internal/middleware"
	"github.com/tractionhq/traction-api/internal/models"
	"github.com/tractionhq/traction-api/internal/services"
)

type ProjectHandler struct {
	svc *services.ProjectService
}

func NewProjectHandler(svc *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	project, err := h.svc.Create(userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

func (h *ProjectHandler) List(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return badRequest(c, "skip must be an integer")
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return badRequest(c, "limit must be an integer")
	}
	projects, err := h.svc.List(userID, skip, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(projects)
}

func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	project, err := h.svc.Get(userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	project, err := h.svc.Update(userID, c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	if err := h.svc.Delete(userID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
