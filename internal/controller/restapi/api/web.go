package api

import (
	"embed"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

var (
	//go:embed web/index.html
	webFiles embed.FS
)

func (r *API) ShowUI(ctx *fiber.Ctx) error {
	file, err := webFiles.ReadFile("web/index.html")
	if err != nil {
		r.logger.Error(err, "restapi - api - ShowUI")

		return errorResponse(ctx, http.StatusInternalServerError, "problems with load UI")
	}

	ctx.Set(fiber.HeaderContentType, "text/html")

	return ctx.Send(file)
}
