package handler

import (
	"fmt"

	"ai-memory-capture/internal/pkg/logger"
	"ai-memory-capture/internal/pkg/serverutils"
	internalWS "ai-memory-capture/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// LiveHandler streams pipeline events (state changes, transcript lines,
// elapsed ticks) to websocket clients.
type LiveHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewLiveHandler(hub *internalWS.Hub, log logger.ILogger) *LiveHandler {
	return &LiveHandler{hub: hub, logger: log}
}

// ServeWs upgrades an authenticated request. The token may arrive as the
// "token" query parameter since browsers cannot set headers on upgrades.
func (h *LiveHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	userID := fmt.Sprint(c.Locals("user_id"))
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("LiveHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info("LiveHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
	})(c)
}

func (h *LiveHandler) RegisterRoutes(router fiber.Router) {
	live := router.Group("/live")
	live.Use(serverutils.JwtMiddleware)
	live.Get("/ws", h.ServeWs)
}
