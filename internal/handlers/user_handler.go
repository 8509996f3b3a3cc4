package handlers

import (
	"katalog/internal/middleware"
	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for user accounts.
type UserHandler struct {
	userService *services.UserService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService, validate: newValidator()}
}

// RegisterRoutes registers the user routes. auth must authenticate the caller.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	users := router.Group("/users", auth)
	users.Get("/", middleware.RequireRoles(models.RoleAdmin), h.HandleList)
	users.Get("/:id", h.HandleGet)
}

type userFilters struct {
	Roles    string `query:"roles" validate:"omitempty,oneof=admin user"`
	IsActive *bool  `query:"isActive"`
}

// HandleList returns a page of users.
func (h *UserHandler) HandleList(c *fiber.Ctx) error {
	list, err := parseList(c, h.validate, repositories.UserSortColumns)
	if err != nil {
		return err
	}
	var f userFilters
	if err := bindQuery(c, h.validate, &f); err != nil {
		return err
	}

	page, err := h.userService.List(c.UserContext(), repositories.UserQuery{
		ListQuery: list,
		Role:      f.Roles,
		IsActive:  f.IsActive,
	})
	if err != nil {
		return err
	}
	return respondPage(c, "Users fetched successfully", page)
}

// HandleGet returns one user.
func (h *UserHandler) HandleGet(c *fiber.Ctx) error {
	user, err := h.userService.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "User fetched successfully", user)
}
