package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"katalog/internal/apperr"
	"katalog/internal/logging"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the envelope written for every failed request.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Status     bool   `json:"status"`
	Data       any    `json:"data"`
	Error      string `json:"error"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
}

// ErrorHandler renders errors returned by handlers and middleware. Internal
// failures are logged and reported with a generic message.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, title, message := classify(err)
		if status >= fiber.StatusInternalServerError {
			logging.FromContextOr(c.UserContext(), logger).Error("Request failed",
				"method", c.Method(),
				"path", c.OriginalURL(),
				"error", err,
			)
		}
		return c.Status(status).JSON(ErrorResponse{
			StatusCode: status,
			Status:     false,
			Error:      title,
			Message:    message,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Path:       c.OriginalURL(),
		})
	}
}

func classify(err error) (int, string, string) {
	if appErr, ok := apperr.As(err); ok {
		if appErr.Kind == apperr.KindInternal {
			return http.StatusInternalServerError, appErr.Title(), "Internal Server Error"
		}
		return appErr.Status(), appErr.Title(), appErr.Message
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			return fiberErr.Code, "Not Found", "Route not found"
		case fiber.StatusInternalServerError:
			return fiberErr.Code, "Internal Server Error", "Internal Server Error"
		}
		return fiberErr.Code, http.StatusText(fiberErr.Code), fiberErr.Message
	}

	return http.StatusInternalServerError, "Internal Server Error", "Internal Server Error"
}
