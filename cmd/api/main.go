package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tractionhq/traction-api/internal/config"
	"github.com/tractionhq/traction-api/internal/database"
	"github.com/tractionhq/traction-api/internal/handlers"
	"github.com/tractionhq/traction-api/internal/routes"
	"github.com/tractionhq/traction-api/internal/services"
	"gorm.io/gorm"
)

const version = "0.5.0"

var rootCmd = &cobra.Command{
	Use:   "traction-api",
	Short: "Task, project, and goal tracking API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.Connect(cfg)
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Println("migration complete")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("traction-api " + version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

func loadConfig() (*config.Config, error) {
	// .env is optional in production
	_ = godotenv.Load()
	return config.Load()
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	app := newApp(cfg, db)
	log.Printf("traction-api %s listening on :%s", version, cfg.Port)
	return app.Listen(":" + cfg.Port)
}

func newApp(cfg *config.Config, db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{AppName: "traction-api"})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	h := &routes.Handlers{
		Auth:            handlers.NewAuthHandler(db, cfg.JWTSecret),
		Tasks:           handlers.NewTaskHandler(services.NewTaskService(db)),
		Projects:        handlers.NewProjectHandler(services.NewProjectService(db)),
		Goals:           handlers.NewGoalHandler(services.NewGoalService(db)),
		Recommendations: handlers.NewRecommendationHandler(services.NewRecommendationService(db)),
		Imports:         handlers.NewImportHandler(services.NewImportService(db)),
	}
	routes.Setup(app, h, cfg.JWTSecret)
	return app
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
