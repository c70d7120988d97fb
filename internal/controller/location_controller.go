package controller

import (
	"ai-memory-capture/internal/pkg/serverutils"
	"ai-memory-capture/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ILocationController interface {
	RegisterRoutes(r fiber.Router)
	Describe(ctx *fiber.Ctx) error
}

type locationController struct {
	service service.ILocationService
}

func NewLocationController(service service.ILocationService) ILocationController {
	return &locationController{service: service}
}

func (c *locationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/location/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/describe", c.Describe)
}

func (c *locationController) Describe(ctx *fiber.Ctx) error {
	if ctx.Query("lat") == "" || ctx.Query("lon") == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "lat and lon parameters are required"))
	}
	lat := ctx.QueryFloat("lat")
	lon := ctx.QueryFloat("lon")

	place := c.service.Describe(ctx.Context(), &lat, &lon)
	return ctx.JSON(serverutils.SuccessResponse("Success describe location", fiber.Map{"location": place}))
}
