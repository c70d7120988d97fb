package controller

import (
	"ai-memory-capture/internal/pkg/serverutils"
	"ai-memory-capture/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISyncController interface {
	RegisterRoutes(r fiber.Router)
	Sync(ctx *fiber.Ctx) error
}

type syncController struct {
	service service.ISyncService
}

func NewSyncController(service service.ISyncService) ISyncController {
	return &syncController{service: service}
}

func (c *syncController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sync/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Sync)
}

func (c *syncController) Sync(ctx *fiber.Ctx) error {
	res, err := c.service.SyncFromCloud(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Sync finished", res))
}
