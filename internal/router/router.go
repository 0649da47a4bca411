package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campuspass/campuspass-api/internal/config"
	"github.com/campuspass/campuspass-api/internal/handler"
	"github.com/campuspass/campuspass-api/internal/middleware"
	"github.com/campuspass/campuspass-api/internal/observability"
	"github.com/campuspass/campuspass-api/internal/utils"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EventHandler      *handler.EventHandler
	PassHandler       *handler.PassHandler
	ScanHandler       *handler.ScanHandler
	StudentHandler    *handler.StudentHandler
	AttendanceHandler *handler.AttendanceHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// A missing authenticator must never leave the protected routes open.
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusServiceUnavailable, "authentication is not configured")
		}
	}

	if deps.EventHandler != nil {
		events := app.Group("/api/v1/events", jwtMiddleware)
		deps.EventHandler.Register(events)

		if deps.PassHandler != nil {
			deps.PassHandler.RegisterEventRoutes(events)
		}
	}

	if deps.PassHandler != nil {
		passes := app.Group("/api/v1/passes", jwtMiddleware)
		deps.PassHandler.RegisterPassRoutes(passes)
	}

	if deps.ScanHandler != nil {
		scan := app.Group("/api/v1/scan", jwtMiddleware,
			middleware.RateLimit("scan", cfg.ScanRateLimit, time.Minute))
		deps.ScanHandler.Register(scan)
	}

	if deps.StudentHandler != nil {
		students := app.Group("/api/v1/students", jwtMiddleware)
		deps.StudentHandler.Register(students)
	}

	if deps.AttendanceHandler != nil {
		attendance := app.Group("/api/v1/attendance", jwtMiddleware)
		deps.AttendanceHandler.Register(attendance)
	}
}
