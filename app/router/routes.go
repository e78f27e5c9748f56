// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/biotap/biotap/app/dto"
	"github.com/biotap/biotap/app/handlers"
	"github.com/biotap/biotap/app/middleware"
	"github.com/biotap/biotap/config"
	"github.com/biotap/biotap/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app              *fiber.App
	cfg              *config.ProductionConfig
	userHandler      handlers.UserHandlerInterface
	linkHandler      handlers.LinkHandlerInterface
	clickHandler     handlers.ClickHandlerInterface
	analyticsHandler handlers.AnalyticsHandlerInterface
	adminHandler     handlers.AdminHandlerInterface
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	cfg *config.ProductionConfig,
	userHandler handlers.UserHandlerInterface,
	linkHandler handlers.LinkHandlerInterface,
	clickHandler handlers.ClickHandlerInterface,
	analyticsHandler handlers.AnalyticsHandlerInterface,
	adminHandler handlers.AdminHandlerInterface,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "BioTap API",
		ServerHeader: "BioTap",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:              app,
		cfg:              cfg,
		userHandler:      userHandler,
		linkHandler:      linkHandler,
		clickHandler:     clickHandler,
		analyticsHandler: analyticsHandler,
		adminHandler:     adminHandler,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	api.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Server.GlobalRateLimit,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP() // Rate limit by IP
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).
				JSON(dto.ErrorResponse("RATE_LIMIT_EXCEEDED", "Too many requests. Please try again later."))
		},
		Next: func(c fiber.Ctx) bool {
			// Skip rate limiting for health checks
			return c.Path() == "/api/v1/health"
		},
	}))

	// Accounts
	api.Post("/users", r.userHandler.CreateUser)
	api.Get("/users/:id", r.userHandler.GetUser)
	api.Delete("/users/:id", r.userHandler.DeactivateUser)

	// Link management
	api.Post("/users/:user_id/links", r.linkHandler.CreateLink)
	api.Get("/users/:user_id/links", r.linkHandler.ListLinks)
	api.Put("/users/:user_id/links/:link_id", r.linkHandler.UpdateLink)
	api.Delete("/users/:user_id/links/:link_id", r.linkHandler.DeleteLink)

	// Click tracking
	api.Post("/links/:id/click", r.clickHandler.TrackClick)

	// Analytics
	api.Get("/users/:id/analytics", r.analyticsHandler.GetAnalytics)
	api.Get("/users/:id/analytics/geographic", r.analyticsHandler.GetGeographicAnalytics)

	// Public profile
	api.Get("/public/:username/links", r.linkHandler.PublicLinks)

	// Operational endpoints
	admin := api.Group("/admin")
	admin.Post("/jobs/weekly-summary", r.adminHandler.RunWeeklySummary)
	admin.Get("/jobs/weekly-summary/status", r.adminHandler.WeeklySummaryStatus)
	admin.Get("/emails/stats", r.adminHandler.EmailStats)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000, // 1 year
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.cfg.Server.AllowedOrigins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"X-Requested-With",
			"X-Request-ID",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           utils.CORSMaxAge,
	}))

	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Structured request log line per request
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			// Skip logging for health checks in production
			return c.Path() == "/api/v1/health"
		},
	}))

	if r.cfg.Metrics.Enabled {
		r.app.Use(middleware.Metrics())
	}

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse("Service is healthy", fiber.Map{
		"status":    "ok",
		"timestamp": utils.UTCNow().Unix(),
		"version":   "1.0.0",
		"service":   "biotap-api",
	}))
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).
		JSON(dto.ErrorResponse("NOT_FOUND", "The requested resource was not found"))
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)

	return c.Status(code).
		JSON(dto.ErrorResponse("INTERNAL_ERROR", "An internal server error occurred"))
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
