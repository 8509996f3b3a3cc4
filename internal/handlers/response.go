package handlers

import (
	"katalog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Response is the success envelope returned by every endpoint.
type Response struct {
	Message string       `json:"message"`
	Data    any          `json:"data"`
	Meta    *models.Meta `json:"meta,omitempty"`
}

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Message: message, Data: data})
}

func respondPage[T any](c *fiber.Ctx, message string, page *models.Page[T]) error {
	data := page.Data
	if data == nil {
		data = []T{}
	}
	return c.Status(fiber.StatusOK).JSON(Response{Message: message, Data: data, Meta: &page.Meta})
}
