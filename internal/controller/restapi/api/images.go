package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"visionapi/internal/controller/restapi/api/response"
	"visionapi/internal/dto"
	"visionapi/internal/entity"
	"visionapi/pkg/types/errs"
)

// @Summary  	List images
// @Description Lists all uploaded images with detection results joined from the database; falls back to a raw S3 listing when the database is unavailable
// @Tags 		images
// @Produce 	json
// @Success 	200 {object} response.Images
// @Failure 	500 {object} response.Images "Storage listing failed"
// @Router 		/api/images [get]
func (r *API) getImages(ctx *fiber.Ctx) error {
	listing, err := r.img.ListImages(ctx.UserContext())
	if err != nil {
		r.logger.Error(err, "restapi - api - getImages")

		return ctx.Status(http.StatusInternalServerError).JSON(response.Images{
			Success: false,
			Images:  []response.ImageInfo{},
			Source:  string(listing.Source),
			Error:   err.Error(),
		})
	}

	images := make([]response.ImageInfo, 0, len(listing.Images))
	for _, view := range listing.Images {
		images = append(images, toImageInfo(view))
	}

	resp := response.Images{
		Success:        true,
		Images:         images,
		Source:         string(listing.Source),
		ProcessingMode: processingMode,
		Count:          len(images),
	}
	if listing.Source == dto.SourceS3Fallback {
		resp.Message = "Using S3 fallback - database unavailable"
	}

	return ctx.JSON(resp)
}

// @Summary  	Get image URL
// @Description Returns a presigned URL for one image by its S3 key
// @Tags 		images
// @Produce 	json
// @Param 		key path string true "S3 object key"
// @Success 	200 {object} response.ImageURL
// @Failure 	404 {object} response.Error "Image not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/image/{key} [get]
func (r *API) getImageURL(ctx *fiber.Ctx) error {
	key := ctx.Params("*")
	if key == "" {
		return errorResponse(ctx, http.StatusBadRequest, "image key is required")
	}

	url, err := r.img.ImageURL(ctx.UserContext(), key)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "image not found")
		}
		r.logger.Error(err, "restapi - api - getImageURL")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	return ctx.JSON(response.ImageURL{
		Success: true,
		URL:     url,
		S3Key:   key,
		Bucket:  r.img.Bucket(),
	})
}

func toImageInfo(view dto.ImageView) response.ImageInfo {
	info := response.ImageInfo{
		FileName:         view.Key,
		OriginalName:     view.OriginalName,
		URL:              view.URL,
		Analysis:         toAnalysis(view),
		ProcessingStatus: string(view.ProcessingStatus),
		ImageID:          view.ImageID,
	}

	if view.UploadTime != nil {
		t := view.UploadTime.Format(time.RFC3339)
		info.UploadTime = &t
	}
	if view.Size != nil {
		size := *view.Size
		info.Size = &size
	}
	if view.ProcessedAt != nil {
		t := view.ProcessedAt.Format(time.RFC3339)
		info.ProcessedAt = &t
	}

	return info
}

func toAnalysis(view dto.ImageView) response.Analysis {
	analysis := response.Analysis{
		Status:        string(view.ProcessingStatus),
		Labels:        make([]response.Label, 0, len(view.Labels)),
		BoundingBoxes: make([]response.BoundingBox, 0, len(view.Persons)),
		FaceBoxes:     make([]response.FaceBox, 0, len(view.Faces)),
	}

	if view.ProcessingStatus == entity.Processing {
		analysis.Message = "Analysis in progress..."
	}

	for _, label := range view.Labels {
		analysis.Labels = append(analysis.Labels, response.Label{
			Name:       label.Name,
			Confidence: label.Confidence,
		})
	}

	for _, person := range view.Persons {
		analysis.BoundingBoxes = append(analysis.BoundingBoxes, response.BoundingBox{
			Left:       person.Box.Left,
			Top:        person.Box.Top,
			Width:      person.Box.Width,
			Height:     person.Box.Height,
			Confidence: person.Confidence,
		})
	}

	for _, face := range view.Faces {
		faceBox := response.FaceBox{
			Left:       face.Box.Left,
			Top:        face.Box.Top,
			Width:      face.Box.Width,
			Height:     face.Box.Height,
			Confidence: face.Confidence,
		}

		if face.AgeRange != nil {
			faceBox.AgeRange = &response.AgeRange{Low: face.AgeRange.Low, High: face.AgeRange.High}
		}
		if face.Gender != nil {
			faceBox.Gender = &response.Gender{Value: face.Gender.Value, Confidence: face.Gender.Confidence}
		}
		if face.PrimaryEmotion != nil {
			faceBox.Emotions = []response.Emotion{{
				Type:       face.PrimaryEmotion.Type,
				Confidence: face.PrimaryEmotion.Confidence,
			}}
		}

		analysis.FaceBoxes = append(analysis.FaceBoxes, faceBox)
	}

	return analysis
}
