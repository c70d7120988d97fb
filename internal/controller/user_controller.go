package controller

import (
	"fmt"

	"ai-memory-capture/internal/dto"
	"ai-memory-capture/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	Me(ctx *fiber.Ctx) error
}

type userController struct{}

func NewUserController() IUserController {
	return &userController{}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/me", c.Me)
}

func (c *userController) Me(ctx *fiber.Ctx) error {
	res := dto.MeResponse{
		UserId: localString(ctx, "user_id"),
		Email:  localString(ctx, "email"),
		Name:   localString(ctx, "name"),
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get current user", res))
}

func localString(ctx *fiber.Ctx, key string) string {
	v := ctx.Locals(key)
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
