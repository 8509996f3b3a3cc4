package middleware

import (
	"log/slog"
	"time"

	"katalog/internal/logging"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger writes one structured line per request and places a
// request-scoped logger in the user context. Errors are rendered here so
// the logged status is the one sent to the client.
func RequestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqLogger := logger.With("requestId", c.Locals("requestid"))
		c.SetUserContext(logging.IntoContext(c.UserContext(), reqLogger))

		if err := c.Next(); err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", time.Since(start).String(),
			"ip", c.IP(),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			reqLogger.Error("Request completed", attrs...)
		case status >= fiber.StatusBadRequest:
			reqLogger.Warn("Request completed", attrs...)
		default:
			reqLogger.Info("Request completed", attrs...)
		}
		return nil
	}
}
