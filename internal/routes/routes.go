package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tractionhq/traction-api/internal/handlers"
	"github.com/tractionhq/traction-api/internal/middleware"
)

type Handlers struct {
	Auth            *handlers.AuthHandler
	Tasks           *handlers.TaskHandler
	Projects        *handlers.ProjectHandler
	Goals           *handlers.GoalHandler
	Recommendations *handlers.RecommendationHandler
	Imports         *handlers.ImportHandler
}

func Setup(app *fiber.App, h *Handlers, jwtSecret string) {
	app.Get("/", handlers.Root)
	app.Get("/healthz", handlers.Health)

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)

	protected := api.Group("/", middleware.Protected(jwtSecret))

	protected.Get("/me", h.Auth.Me)

	tasks := protected.Group("/tasks")
	tasks.Post("/", h.Tasks.Create)
	tasks.Get("/", h.Tasks.List)
	tasks.Post("/promote-week", h.Tasks.PromoteWeek)
	tasks.Get("/:id", h.Tasks.Get)
	tasks.Patch("/:id", h.Tasks.Update)
	tasks.Delete("/:id", h.Tasks.Delete)
	tasks.Post("/:id/goals", h.Tasks.LinkGoal)
	tasks.Delete("/:id/goals/:goalId", h.Tasks.UnlinkGoal)

	projects := protected.Group("/projects")
	projects.Post("/", h.Projects.Create)
	projects.Get("/", h.Projects.List)
	projects.Get("/:id", h.Projects.Get)
	projects.Patch("/:id", h.Projects.Update)
	projects.Delete("/:id", h.Projects.Delete)

	goals := protected.Group("/goals")
	goals.Post("/", h.Goals.Create)
	goals.Get("/", h.Goals.List)
	goals.Get("/:id", h.Goals.Get)
	goals.Patch("/:id", h.Goals.Update)
	goals.Delete("/:id", h.Goals.Delete)
	goals.Post("/:id/close", h.Goals.Close)
	goals.Post("/:id/reopen", h.Goals.Reopen)
	goals.Post("/:id/krs", h.Goals.AddKR)
	goals.Patch("/:id/krs/:krId", h.Goals.UpdateKR)
	goals.Delete("/:id/krs/:krId", h.Goals.DeleteKR)
	goals.Post("/:id/link-tasks", h.Goals.LinkTasks)
	goals.Get("/:id/progress", h.Goals.Progress)

	recs := protected.Group("/recommendations")
	recs.Get("/next", h.Recommendations.Next)
	recs.Post("/suggest-week", h.Recommendations.SuggestWeek)

	imports := protected.Group("/imports")
	imports.Post("/trello", h.Imports.Trello)
}
