package server

import (
	"context"
	"log"

	"leadflow-be/internal/bootstrap"
	"leadflow-be/internal/config"
	"leadflow-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ErrorHandler: serverutils.ErrorHandler,
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	// Routes
	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// registerRoutes mounts public routes before the guarded groups so the
// group middlewares never see login or signup requests.
func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	app.Get("/metrics", c.Metrics.Handler())

	api := app.Group("/api")

	// Public
	c.AuthController.RegisterRoutes(api)
	c.LeadController.RegisterPublicRoutes(api)
	c.LocationController.RegisterPublicRoutes(api)
	c.PlanController.RegisterRoutes(api)

	// Realtime
	c.BroadcastingController.RegisterRoutes(api, c.Guards.Authenticated())
	c.Hub.RegisterRoutes(api, c.Tokens)

	// Admin
	admin := api.Group("/admin", c.Guards.Admin()...)
	c.AdminController.RegisterRoutes(admin)
	c.LeadController.RegisterAdminRoutes(admin)
	c.NotificationController.RegisterRoutes(admin)
	c.LocationController.RegisterAdminRoutes(admin)
	c.ProviderController.RegisterAdminRoutes(admin)
	c.SettingsController.RegisterAdminRoutes(admin)

	// Provider
	provider := api.Group("/provider", c.Guards.Provider()...)
	c.AuthController.RegisterProviderRoutes(provider)
	c.ProviderController.RegisterProviderRoutes(provider)
	c.SettingsController.RegisterProviderRoutes(provider)
	c.NotificationController.RegisterRoutes(provider)
	c.LeadController.RegisterScopedRoutes(provider, c.Guards.Subscribed())
}
