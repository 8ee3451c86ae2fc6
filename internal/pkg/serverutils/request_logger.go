package serverutils

import (
	"time"

	"dreambees-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDLocal  = "request_id"
)

// RequestLogger tags each request with an id and writes one access-log line
// after the handler chain (including the error handler) has run.
func RequestLogger(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()

		requestID := ctx.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Locals(RequestIDLocal, requestID)
		ctx.Set(RequestIDHeader, requestID)

		chainErr := ctx.Next()
		if chainErr != nil {
			if err := ctx.App().ErrorHandler(ctx, chainErr); err != nil {
				_ = ctx.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := ctx.Response().StatusCode()
		details := map[string]interface{}{
			"method":     ctx.Method(),
			"path":       ctx.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": requestID,
		}
		switch {
		case status >= 500:
			log.Error("HTTP", "Request failed", details)
		case status >= 400:
			log.Warn("HTTP", "Request rejected", details)
		default:
			log.Info("HTTP", "Request handled", details)
		}
		return nil
	}
}
