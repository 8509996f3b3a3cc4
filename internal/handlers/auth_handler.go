package handlers

import (
	"strings"
	"time"

	"katalog/internal/apperr"
	"katalog/internal/middleware"
	"katalog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const refreshCookie = "refreshToken"

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService  *services.AuthService
	validate     *validator.Validate
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		validate:     newValidator(),
		cookieSecure: cookieSecure,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Get("/activation", h.HandleActivate)
	authRoutes.Get("/refresh", h.HandleRefresh)
	authRoutes.Post("/logout", h.HandleLogout)

	protected := authRoutes.Group("", middleware.AuthRequired(h.authService))
	protected.Get("/me", h.HandleMe)
	protected.Post("/change-password", h.HandleChangePassword)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Username string   `json:"username" validate:"required,min=3"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Roles    []string `json:"roles" validate:"omitempty,dive,oneof=admin user"`
}

func (r *RegisterRequest) trim() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.UserContext(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "User registered successfully", user)
}

// LoginRequest represents the request body for login. Identifier is a
// username or an email address.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

func (r *LoginRequest) trim() {
	r.Identifier = strings.TrimSpace(r.Identifier)
}

// HandleLogin checks credentials, sets the refresh cookie and returns an
// access token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return err
	}

	tokens, err := h.authService.Login(c.UserContext(), req.Identifier, req.Password)
	if err != nil {
		return err
	}
	h.setRefreshCookie(c, tokens.RefreshToken)
	return respond(c, fiber.StatusOK, "User logged in successfully", fiber.Map{"accessToken": tokens.AccessToken})
}

// HandleActivate activates the account holding the activationCode query
// parameter.
func (h *AuthHandler) HandleActivate(c *fiber.Ctx) error {
	code := strings.TrimSpace(c.Query("activationCode"))
	if code == "" {
		return apperr.Validation("Field 'activationCode' failed on the 'required' tag")
	}
	user, err := h.authService.Activate(c.UserContext(), code)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "User activated successfully", user)
}

// HandleMe returns the account of the authenticated caller.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	claims, _ := middleware.CurrentUser(c)
	user, err := h.authService.Me(c.UserContext(), claims.ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "User fetched successfully", user)
}

// HandleRefresh rotates the token pair held in the refresh cookie.
func (h *AuthHandler) HandleRefresh(c *fiber.Ctx) error {
	token := c.Cookies(refreshCookie)
	if token == "" {
		return apperr.Unauthorized("Refresh token not found")
	}
	tokens, err := h.authService.Refresh(c.UserContext(), token)
	if err != nil {
		return err
	}
	h.setRefreshCookie(c, tokens.RefreshToken)
	return respond(c, fiber.StatusOK, "Token refreshed successfully", fiber.Map{"accessToken": tokens.AccessToken})
}

// HandleLogout revokes the refresh token and clears its cookie.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	token := c.Cookies(refreshCookie)
	if token == "" {
		return apperr.Unauthorized("Refresh token not found")
	}
	if err := h.authService.Logout(c.UserContext(), token); err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
	return respond(c, fiber.StatusOK, "User logged out successfully", nil)
}

// ChangePasswordRequest represents the request body for a password change.
type ChangePasswordRequest struct {
	Password    string `json:"password" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// HandleChangePassword replaces the caller's password.
func (h *AuthHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return err
	}
	claims, _ := middleware.CurrentUser(c)
	user, err := h.authService.ChangePassword(c.UserContext(), claims.ID, req.Password, req.NewPassword)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Password changed successfully", user)
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.authService.RefreshTTL()),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}
