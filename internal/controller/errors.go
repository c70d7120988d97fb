package controller

import (
	"ai-memory-capture/internal/pkg/serverutils"
	"ai-memory-capture/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ErrorStatuses maps service sentinels to HTTP statuses for the error handler.
func ErrorStatuses() []serverutils.ErrorStatus {
	return []serverutils.ErrorStatus{
		{Err: service.ErrSessionActive, Status: fiber.StatusConflict},
		{Err: service.ErrNoActiveSession, Status: fiber.StatusConflict},
		{Err: service.ErrSessionNotFound, Status: fiber.StatusNotFound},
		{Err: service.ErrNoTranscript, Status: fiber.StatusUnprocessableEntity},
		{Err: service.ErrSummaryFailed, Status: fiber.StatusBadGateway},
		{Err: service.ErrCloudDisabled, Status: fiber.StatusServiceUnavailable},
	}
}
