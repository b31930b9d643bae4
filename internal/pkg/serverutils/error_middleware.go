package serverutils

import (
	"errors"

	"info-seeker-be/internal/repository/contract"
	"info-seeker-be/pkg/pipeline"
	"info-seeker-be/pkg/taskset"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps a handler error onto an HTTP status code.
func StatusFor(err error) int {
	var fe *fiber.Error
	var ve *ValidationError
	var pe *pipeline.PhaseError
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &ve), errors.Is(err, pipeline.ErrEmptyQuery), errors.Is(err, pipeline.ErrEmptySessionID):
		return fiber.StatusBadRequest
	case errors.Is(err, contract.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, pipeline.ErrPhaseTimeout):
		return fiber.StatusGatewayTimeout
	case errors.As(err, &pe):
		return fiber.StatusBadGateway
	case errors.Is(err, taskset.ErrClosed):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware turns errors returned by later handlers into the
// JSON error envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code := StatusFor(err)
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}
