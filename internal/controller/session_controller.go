package controller

import (
	"ai-memory-capture/internal/dto"
	"ai-memory-capture/internal/pkg/serverutils"
	"ai-memory-capture/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Stop(ctx *fiber.Ctx) error
	Active(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Notes(ctx *fiber.Ctx) error
	Questions(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessions  service.ISessionService
	summaries service.ISummaryService
	questions service.IQuestionService
}

func NewSessionController(sessions service.ISessionService, summaries service.ISummaryService, questions service.IQuestionService) ISessionController {
	return &sessionController{
		sessions:  sessions,
		summaries: summaries,
		questions: questions,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/start", c.Start)
	h.Post("/stop", c.Stop)
	h.Get("/active", c.Active)
	h.Get("", c.GetAll)
	h.Get("/:id", c.Show)
	h.Get("/:id/notes", c.Notes)
	h.Get("/:id/questions", c.Questions)
}

func (c *sessionController) Start(ctx *fiber.Ctx) error {
	var req dto.StartSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessions.Start(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session started", res))
}

func (c *sessionController) Stop(ctx *fiber.Ctx) error {
	res, err := c.sessions.Stop(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session stopped", res))
}

func (c *sessionController) Active(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get active session", c.sessions.Snapshot()))
}

func (c *sessionController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.sessions.ListSessions(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all sessions", res))
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessions.LoadExisting(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *sessionController) Notes(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.summaries.GetOrGenerate(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session notes", res))
}

func (c *sessionController) Questions(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.questions.ListBySession(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session questions", res))
}

func sessionIdParam(ctx *fiber.Ctx) (uint, error) {
	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}
	return uint(id), nil
}
