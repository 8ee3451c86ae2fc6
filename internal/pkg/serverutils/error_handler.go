package serverutils

import (
	"errors"

	"dreambees-be/internal/pkg/apperror"
	"dreambees-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every error returned by a handler as {"error", "code"}.
// Anything that is not an AppError or fiber.Error is logged and reported as a
// generic 500.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		if appErr := apperror.From(err); appErr != nil {
			return ctx.Status(appErr.StatusCode).JSON(appErr)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(&apperror.AppError{
				StatusCode: fiberErr.Code,
				Code:       codeForStatus(fiberErr.Code),
				Message:    fiberErr.Message,
			})
		}

		log.Error("HTTP", "Unhandled error", map[string]interface{}{
			"method":     ctx.Method(),
			"path":       ctx.Path(),
			"request_id": ctx.Locals(RequestIDLocal),
			"error":      err.Error(),
		})

		internal := apperror.Internal()
		return ctx.Status(internal.StatusCode).JSON(internal)
	}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
		return apperror.CodeBadRequest
	case fiber.StatusNotFound:
		return apperror.CodeNotFound
	case fiber.StatusUnauthorized:
		return apperror.CodeUnauthorized
	case fiber.StatusInternalServerError:
		return apperror.CodeInternal
	default:
		return "HTTP_ERROR"
	}
}
