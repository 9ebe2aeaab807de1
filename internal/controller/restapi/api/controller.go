package api

import (
	"github.com/gofiber/fiber/v2"

	"visionapi/internal/usecase"
	"visionapi/pkg/logger"
)

const processingMode = "async_worker"

type API struct {
	img    usecase.ImageUseCase
	region string
	logger logger.Interface
}

func NewRoutes(apiGroup fiber.Router, img usecase.ImageUseCase, region string, l logger.Interface) *API {
	r := &API{img: img, region: region, logger: l}

	{
		apiGroup.Post("/upload", r.uploadImages)
		apiGroup.Get("/images", r.getImages)
		apiGroup.Get("/image/*", r.getImageURL)
		apiGroup.Post("/processing-status/batch", r.getBatchProcessingStatus)
		apiGroup.Get("/processing-status/:id", r.getProcessingStatus)

		apiGroup.Get("/health", r.healthCheck)
		apiGroup.Get("/status/infrastructure", r.infrastructureStatus)
		apiGroup.Get("/config", r.getConfig)
	}

	return r
}
