// Package server assembles the Fiber application: middleware, error
// rendering and the route table.
package server

import (
	"log/slog"

	"katalog/internal/handlers"
	"katalog/internal/middleware"
	"katalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Services are the business services exposed over HTTP.
type Services struct {
	Auth       *services.AuthService
	Users      *services.UserService
	Brands     *services.BrandService
	Categories *services.CategoryService
	Products   *services.ProductService
	Variants   *services.VariantService
}

// Options configure the application.
type Options struct {
	APIPrefix    string
	CookieSecure bool
	// Throttle is skipped when Limit is zero.
	Throttle     middleware.ThrottleConfig
	HealthChecks map[string]handlers.HealthCheck
	Logger       *slog.Logger
}

// New builds the Fiber app serving svc.
func New(svc Services, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "katalog",
		ErrorHandler: handlers.ErrorHandler(opts.Logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(opts.Logger))
	if opts.Throttle.Limit > 0 {
		app.Use(middleware.Throttle(opts.Throttle))
	}

	handlers.NewHealthHandler(opts.HealthChecks).RegisterRoutes(app)

	api := app.Group(opts.APIPrefix)
	auth := middleware.AuthRequired(svc.Auth)

	handlers.NewAuthHandler(svc.Auth, opts.CookieSecure).RegisterRoutes(api)
	handlers.NewUserHandler(svc.Users).RegisterRoutes(api, auth)
	handlers.NewBrandHandler(svc.Brands).RegisterRoutes(api, auth)
	handlers.NewCategoryHandler(svc.Categories).RegisterRoutes(api, auth)
	handlers.NewProductHandler(svc.Products).RegisterRoutes(api, auth)
	handlers.NewVariantHandler(svc.Variants).RegisterRoutes(api, auth)

	return app
}
