package serverutils

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// ErrorStatus maps a sentinel error to an HTTP status.
type ErrorStatus struct {
	Err    error
	Status int
}

// ErrorHandlerMiddleware turns handler errors into BaseResponse JSON. Errors
// matching one of the mappings (errors.Is) get its status; fiber errors keep
// theirs; everything else is a 500.
func ErrorHandlerMiddleware(mappings ...ErrorStatus) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := StatusFor(err, mappings...)
		if status >= fiber.StatusInternalServerError {
			log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
		}
		return ctx.Status(status).JSON(ErrorResponse(status, err.Error()))
	}
}

func StatusFor(err error, mappings ...ErrorStatus) int {
	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			return m.Status
		}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return fiber.StatusBadRequest
	}

	return fiber.StatusInternalServerError
}
