package api

import (
	"github.com/gofiber/fiber/v2"

	"visionapi/internal/controller/restapi/api/response"
)

func errorResponse(ctx *fiber.Ctx, code int, msg string) error {
	return ctx.Status(code).JSON(response.Error{Success: false, Error: msg})
}
