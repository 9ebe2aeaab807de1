package api

import (
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"visionapi/internal/controller/restapi/api/response"
	"visionapi/internal/dto"
	"visionapi/pkg/types/errs"
)

// @Summary  	Upload images
// @Description Uploads images to S3 and registers pending metadata records; analysis runs asynchronously in an external worker
// @Tags 		images
// @Accept 		mpfd
// @Produce 	json
// @Param 		files formData file true "Image files"
// @Success 	200 {object} response.Upload
// @Failure 	400 {object} response.Error "No files provided"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/upload [post]
func (r *API) uploadImages(ctx *fiber.Ctx) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "No files provided")
	}

	// Both the multi-file and the single-file form field are accepted.
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		fileHeaders = form.File["file"]
	}
	if len(fileHeaders) == 0 {
		return errorResponse(ctx, http.StatusBadRequest, "No files provided")
	}

	uploads := make([]dto.FileUpload, 0, len(fileHeaders))
	openFiles := make([]multipart.File, 0, len(fileHeaders))

	defer func() {
		for _, f := range openFiles {
			f.Close()
		}
	}()

	for _, fh := range fileHeaders {
		upload := dto.FileUpload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		}

		// A part that cannot be opened still produces a per-file failed
		// entry instead of failing the batch.
		f, err := fh.Open()
		if err != nil {
			r.logger.Error(err, "restapi - api - uploadImages - fh.Open, name=%s", fh.Filename)
		} else {
			openFiles = append(openFiles, f)
			upload.Data = f
		}

		uploads = append(uploads, upload)
	}

	results, err := r.img.UploadImages(ctx.UserContext(), uploads)
	if err != nil {
		if errors.Is(err, errs.ErrNoFilesProvided) {
			return errorResponse(ctx, http.StatusBadRequest, "No files provided")
		}
		r.logger.Error(err, "restapi - api - uploadImages")

		return errorResponse(ctx, http.StatusInternalServerError, "upload failed")
	}

	files := make([]response.UploadedFile, 0, len(results))
	for _, res := range results {
		files = append(files, toUploadedFile(res))
	}

	return ctx.JSON(response.Upload{
		Success:         true,
		Files:           files,
		Bucket:          r.img.Bucket(),
		DatabaseEnabled: r.img.MetadataEnabled(),
		ProcessingMode:  processingMode,
		Message:         "Images uploaded successfully. AI processing will complete in the background.",
	})
}

func toUploadedFile(res dto.UploadResult) response.UploadedFile {
	if res.Status == dto.UploadStatusFailed {
		return response.UploadedFile{
			FileName: res.OriginalName,
			Status:   dto.UploadStatusFailed,
			Error:    res.Error,
		}
	}

	return response.UploadedFile{
		FileName:         res.Key,
		OriginalName:     res.OriginalName,
		S3Key:            res.Key,
		Bucket:           res.Bucket,
		Status:           res.Status,
		ProcessingStatus: string(res.ProcessingStatus),
		Message:          "Image uploaded successfully. Processing will complete shortly.",
		UploadTime:       res.UploadTime.Format(time.RFC3339),
		ImageID:          res.ImageID,
		FileSize:         res.Size,
		Analysis: &response.Analysis{
			Status:        "processing",
			Message:       "AI analysis in progress...",
			Labels:        []response.Label{},
			BoundingBoxes: []response.BoundingBox{},
			FaceBoxes:     []response.FaceBox{},
		},
	}
}
