package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tractionhq/traction-api/internal/middleware"
	"github.com/tractionhq/traction-api/internal/models"
	"github.com/tractionhq/traction-api/internal/services"
)

type GoalHandler struct {
	svc *services.GoalService
}

func NewGoalHandler(svc *services.GoalService) *GoalHandler {
	return &GoalHandler{svc: svc}
}

func (h *GoalHandler) Create(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.CreateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	goal, err := h.svc.Create(userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(goal)
}

func (h *GoalHandler) List(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return badRequest(c, "skip must be an integer")
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return badRequest(c, "limit must be an integer")
	}
	var goalType *string
	if v := c.Query("type"); v != "" {
		goalType = &v
	}
	var isClosed *bool
	switch c.Query("isClosed") {
	case "true":
		v := true
		isClosed = &v
	case "false":
		v := false
		isClosed = &v
	}
	includeArchived := c.Query("includeArchived") == "true"

	goals, err := h.svc.List(userID, goalType, isClosed, includeArchived, skip, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(goals)
}

func (h *GoalHandler) Get(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	detail, err := h.svc.GetDetail(userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

func (h *GoalHandler) Update(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.UpdateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	goal, err := h.svc.Update(userID, c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(goal)
}

func (h *GoalHandler) Delete(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	if err := h.svc.Delete(userID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GoalHandler) Close(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	goal, err := h.svc.Close(userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(goal)
}

func (h *GoalHandler) Reopen(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	goal, err := h.svc.Reopen(userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(goal)
}

func (h *GoalHandler) AddKR(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.CreateKRRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	kr, err := h.svc.AddKeyResult(userID, c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(kr)
}

func (h *GoalHandler) UpdateKR(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.UpdateKRRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	kr, err := h.svc.UpdateKeyResult(userID, c.Params("id"), c.Params("krId"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(kr)
}

func (h *GoalHandler) DeleteKR(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	if err := h.svc.DeleteKeyResult(userID, c.Params("id"), c.Params("krId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GoalHandler) LinkTasks(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.LinkTasksRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(req.TaskIDs) == 0 {
		return badRequest(c, "taskIds is required")
	}
	resp, err := h.svc.LinkTasks(userID, c.Params("id"), req.TaskIDs, req.Weight)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *GoalHandler) Progress(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	progress, err := h.svc.Progress(userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(progress)
}
