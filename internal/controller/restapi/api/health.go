package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/aws/smithy-go"
	"github.com/gofiber/fiber/v2"

	"visionapi/internal/controller/restapi/api/response"
)

// @Summary  	Health check
// @Description Reports per-component health; overall status degrades when storage or the database is unreachable
// @Tags 		system
// @Produce 	json
// @Success 	200 {object} response.Health
// @Router 		/api/health [get]
func (r *API) healthCheck(ctx *fiber.Ctx) error {
	return ctx.JSON(r.buildHealth(ctx))
}

// @Summary  	Infrastructure status
// @Description Same component checks as /api/health, reshaped for the frontend status panel
// @Tags 		system
// @Produce 	json
// @Success 	200 {object} response.Infrastructure
// @Router 		/api/status/infrastructure [get]
func (r *API) infrastructureStatus(ctx *fiber.Ctx) error {
	health := r.buildHealth(ctx)

	return ctx.JSON(response.Infrastructure{
		Overall:        health.Status,
		Timestamp:      health.Timestamp,
		ProcessingMode: health.ProcessingMode,
		Services: map[string]response.Component{
			"s3":       health.Components["s3"],
			"database": health.Components["database"],
			"worker":   health.Components["worker"],
		},
	})
}

func (r *API) buildHealth(ctx *fiber.Ctx) response.Health {
	health := response.Health{
		Status:         "healthy",
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		ProcessingMode: processingMode,
		Components:     map[string]response.Component{},
	}

	err := r.img.CheckStorage(ctx.UserContext())
	if err != nil {
		r.logger.Error(err, "restapi - api - buildHealth - r.img.CheckStorage")

		component := response.Component{
			Status:  "unhealthy",
			Bucket:  r.img.Bucket(),
			Message: fmt.Sprintf("S3 Error: %s", err),
		}

		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			component.ErrorCode = apiErr.ErrorCode()
		}

		health.Components["s3"] = component
		health.Status = "degraded"
	} else {
		health.Components["s3"] = response.Component{
			Status:  "healthy",
			Bucket:  r.img.Bucket(),
			Message: "S3 bucket accessible",
		}
	}

	// A disabled database is a configured mode, not a degradation.
	if !r.img.MetadataEnabled() {
		health.Components["database"] = response.Component{
			Status:  "unavailable",
			Message: "Database not configured",
		}
	} else if err := r.img.CheckMetadata(ctx.UserContext()); err != nil {
		r.logger.Error(err, "restapi - api - buildHealth - r.img.CheckMetadata")

		health.Components["database"] = response.Component{
			Status:  "unhealthy",
			Message: fmt.Sprintf("Database Error: %s", err),
		}
		health.Status = "degraded"
	} else {
		health.Components["database"] = response.Component{
			Status:  "healthy",
			Message: "Database connection successful",
		}
	}

	// Analysis runs in a separate worker; this service only observes its
	// results arriving through the broker.
	health.Components["worker"] = response.Component{
		Status:  "external",
		Message: "Image analysis handled by external worker",
	}

	return health
}
