package server

import (
	"context"

	"dreambees-be/internal/bootstrap"
	"dreambees-be/internal/config"
	"dreambees-be/internal/constant"
	"dreambees-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		// uploads are capped at MaxUploadSize by the upload service; the extra MB covers multipart framing
		BodyLimit:             constant.MaxUploadSize + 1<<20,
		ErrorHandler:          serverutils.ErrorHandler(container.Logger),
		DisableStartupMessage: cfg.IsProduction(),
	})

	// Metrics sit outside the request logger, which resolves errors into
	// responses, so they observe the final status code.
	if cfg.Observability.MetricsEnabled {
		app.Use(container.Metrics.Middleware())
	}
	app.Use(serverutils.RequestLogger(container.Logger))
	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.App.CorsAllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + serverutils.RequestIDHeader,
		AllowMethods:  "GET, POST, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Type, " + serverutils.RequestIDHeader,
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	if cfg.Observability.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(container.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	// Static
	app.Static("/uploads", cfg.Storage.UploadDir)

	// Routes
	registerRoutes(app, cfg, container)

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
	s.container.Logger.Info("SERVER", "Server is running", map[string]interface{}{
		"url": "http://localhost:" + s.cfg.App.Port,
	})
	return s.app.Listen(":" + s.cfg.App.Port)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	api := app.Group("/api")

	api.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"status": "ok"})
	})

	if cfg.App.JwtSecret != "" {
		api.Use(serverutils.JwtMiddleware(cfg.App.JwtSecret))
	}

	c.ChatController.RegisterRoutes(api)
	c.MessageController.RegisterRoutes(api)
	c.UploadController.RegisterRoutes(api)

	c.ChatEventsHandler.RegisterRoutes(api)
}
