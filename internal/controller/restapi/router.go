package restapi

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"visionapi/config"
	"visionapi/internal/controller/restapi/api"
	"visionapi/internal/usecase"
	"visionapi/pkg/logger"
)

// @title Vision API
// @version 1.0.0
// @host localhost:8080
// @BasePath /api
func NewRouter(app *fiber.App, cfg *config.Config, img usecase.ImageUseCase, l logger.Interface) {
	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// Browsers hammer this one; an empty answer beats a 404 in the logs.
	app.Get("/favicon.ico", func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(http.StatusNoContent)
	})

	// Routers
	apiGroup := app.Group("/api")
	r := api.NewRoutes(apiGroup, img, cfg.S3.Region, l)

	// UI
	if cfg.HTTP.StaticDir != "" {
		app.Static("/", cfg.HTTP.StaticDir)
	} else {
		app.Get("/", r.ShowUI)
	}
}
