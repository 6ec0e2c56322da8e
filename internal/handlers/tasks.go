package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/tractionhq/traction-api/internal/middleware"
	"github.com/tractionhq/traction-api/internal/models"
	"github.com/tractionhq/traction-api/internal/services"
)

type TaskHandler struct {
	svc *services.TaskService
}

func NewTaskHandler(svc *services.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

func (h *TaskHandler) Create(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	task, err := h.svc.Create(userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *TaskHandler) List(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	statuses := queryList(c, "status")
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return badRequest(c, "skip must be an integer")
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return badRequest(c, "limit must be an integer")
	}
	includeArchived := c.Query("includeArchived") == "true"
	var projectID *string
	if v := c.Query("projectId"); v != "" {
		projectID = &v
	}

	tasks, err := h.svc.List(userID, statuses, projectID, includeArchived, skip, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tasks)
}

func (h *TaskHandler) Get(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	task, err := h.svc.Get(userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(task)
}

func (h *TaskHandler) Update(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	task, err := h.svc.Update(userID, c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(task)
}

func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	if err := h.svc.Delete(userID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *TaskHandler) PromoteWeek(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.PromoteWeekRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	resp, err := h.svc.PromoteToWeek(userID, req.TaskIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *TaskHandler) LinkGoal(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.LinkTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.GoalID == "" {
		return badRequest(c, "goalId is required")
	}
	link, err := h.svc.Link(userID, c.Params("id"), req.GoalID, req.Weight)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(link)
}

func (h *TaskHandler) UnlinkGoal(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	if err := h.svc.Unlink(userID, c.Params("id"), c.Params("goalId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// queryList collects a repeatable query param, splitting comma-separated
// values as well.
func queryList(c *fiber.Ctx, key string) []string {
	out := []string{}
	for _, raw := range c.Context().QueryArgs().PeekMulti(key) {
		for _, part := range strings.Split(string(raw), ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func queryInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
