package api

import (
	"github.com/gofiber/fiber/v2"

	"visionapi/internal/controller/restapi/api/response"
)

// @Summary  	Application configuration
// @Description Exposes the non-secret runtime configuration the frontend needs
// @Tags 		system
// @Produce 	json
// @Success 	200 {object} response.Config
// @Router 		/api/config [get]
func (r *API) getConfig(ctx *fiber.Ctx) error {
	dbEnabled := r.img.MetadataEnabled()

	return ctx.JSON(response.Config{
		Bucket:          r.img.Bucket(),
		Region:          r.region,
		DatabaseEnabled: dbEnabled,
		ProcessingMode:  processingMode,
		Features: map[string]bool{
			"async_processing": true,
			"worker_analysis":  true,
			"database_storage": dbEnabled,
			"real_time_status": dbEnabled,
		},
	})
}
