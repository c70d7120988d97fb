package controller

import (
	"ai-memory-capture/internal/pkg/serverutils"
	"ai-memory-capture/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ProviderTokenHeader carries the Google access token obtained by the client.
const ProviderTokenHeader = "X-Provider-Token"

type ICalendarController interface {
	RegisterRoutes(r fiber.Router)
	Events(ctx *fiber.Ctx) error
}

type calendarController struct {
	service service.ICalendarService
}

func NewCalendarController(service service.ICalendarService) ICalendarController {
	return &calendarController{service: service}
}

func (c *calendarController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/calendar/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/events", c.Events)
}

func (c *calendarController) Events(ctx *fiber.Ctx) error {
	token := ctx.Get(ProviderTokenHeader)
	if token == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, ProviderTokenHeader+" header is required"))
	}

	res, err := c.service.UpcomingEvents(ctx.Context(), token)
	if err != nil {
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get calendar events", res))
}
