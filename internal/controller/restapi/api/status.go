package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"visionapi/internal/controller/restapi/api/response"
	"visionapi/internal/entity"
	"visionapi/pkg/types/errs"
)

// @Summary  	Get processing status
// @Description Returns the analysis status for one image
// @Tags 		status
// @Produce 	json
// @Param 		id path string true "Image ID(uuid)"
// @Success 	200 {object} response.ProcessingStatus
// @Failure 	400 {object} response.Error "Invalid ID"
// @Failure 	404 {object} response.Error "Image not found"
// @Failure 	503 {object} response.Error "Database not available"
// @Router 		/api/processing-status/{id} [get]
func (r *API) getProcessingStatus(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid image id")
	}

	info, err := r.img.ProcessingStatus(ctx.UserContext(), id)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrMetadataDisabled):
			return errorResponse(ctx, http.StatusServiceUnavailable, "Database not available")
		case errors.Is(err, errs.ErrRecordNotFound):
			return errorResponse(ctx, http.StatusNotFound, "Image not found")
		}
		r.logger.Error(err, "restapi - api - getProcessingStatus")

		return errorResponse(ctx, http.StatusInternalServerError, "database problems")
	}

	uploadTime := info.UploadTime.Format(time.RFC3339)

	resp := response.ProcessingStatus{
		Success:          true,
		ImageID:          id.String(),
		ProcessingStatus: string(info.Status),
		UploadTime:       &uploadTime,
		HasResults:       info.Status == entity.Completed,
	}
	if info.ProcessedAt != nil {
		t := info.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &t
	}

	return ctx.JSON(resp)
}

type batchStatusRequest struct {
	ImageIDs []string `json:"image_ids"`
}

// @Summary  	Get batch processing status
// @Description Returns analysis statuses for several images at once; unknown ids are omitted
// @Tags 		status
// @Accept 		json
// @Produce 	json
// @Param 		request body batchStatusRequest true "Image IDs"
// @Success 	200 {object} response.BatchStatus
// @Failure 	400 {object} response.Error "No image IDs provided"
// @Failure 	503 {object} response.Error "Database not available"
// @Router 		/api/processing-status/batch [post]
func (r *API) getBatchProcessingStatus(ctx *fiber.Ctx) error {
	var req batchStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
	}

	if len(req.ImageIDs) == 0 {
		return errorResponse(ctx, http.StatusBadRequest, "No image IDs provided")
	}

	ids := make([]uuid.UUID, 0, len(req.ImageIDs))
	for _, idStr := range req.ImageIDs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return errorResponse(ctx, http.StatusBadRequest, "invalid image id")
		}
		ids = append(ids, id)
	}

	statuses, err := r.img.BatchProcessingStatus(ctx.UserContext(), ids)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrMetadataDisabled):
			return errorResponse(ctx, http.StatusServiceUnavailable, "Database not available")
		case errors.Is(err, errs.ErrNoImageIDs):
			return errorResponse(ctx, http.StatusBadRequest, "No image IDs provided")
		}
		r.logger.Error(err, "restapi - api - getBatchProcessingStatus")

		return errorResponse(ctx, http.StatusInternalServerError, "database problems")
	}

	entries := make(map[string]response.BatchStatusEntry, len(statuses))
	for id, info := range statuses {
		entry := response.BatchStatusEntry{
			ProcessingStatus: string(info.Status),
			HasResults:       info.Status == entity.Completed,
		}
		if info.ProcessedAt != nil {
			t := info.ProcessedAt.Format(time.RFC3339)
			entry.ProcessedAt = &t
		}
		entries[id] = entry
	}

	return ctx.JSON(response.BatchStatus{
		Success:  true,
		Statuses: entries,
	})
}
