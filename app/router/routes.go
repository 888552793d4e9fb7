// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/amirphl/Tsuchinoko/app/dto"
	"github.com/amirphl/Tsuchinoko/app/handlers"
	"github.com/amirphl/Tsuchinoko/app/middleware"
	"github.com/amirphl/Tsuchinoko/config"
	"github.com/amirphl/Tsuchinoko/utils"
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

// HealthProbe reports whether a backing dependency is reachable
type HealthProbe func() error

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app          *fiber.App
	cfg          *config.ProductionConfig
	pingHandler  handlers.PingHandlerInterface
	statsHandler handlers.StatsHandlerInterface
	dbProbe      HealthProbe
	cacheProbe   HealthProbe
	startedAt    time.Time
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	cfg *config.ProductionConfig,
	pingHandler handlers.PingHandlerInterface,
	statsHandler handlers.StatsHandlerInterface,
	dbProbe HealthProbe,
	cacheProbe HealthProbe,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Tsuchinoko API",
		ServerHeader: "Tsuchinoko",
		ErrorHandler: errorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB; this API carries no request bodies worth more
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:          app,
		cfg:          cfg,
		pingHandler:  pingHandler,
		statsHandler: statsHandler,
		dbProbe:      dbProbe,
		cacheProbe:   cacheProbe,
		startedAt:    utils.UTCNow(),
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	if r.cfg.Server.EnableMetrics {
		r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	// General rate limiting for the API surface
	api.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Security.GlobalRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
	}))

	api.Get("/ping", r.pingHandler.Get)
	api.Post("/ping", r.pingHandler.Ping)

	api.Get("/ping-stats", r.statsHandler.Query)
	api.Get("/ping-stats/export", r.statsHandler.Export)

	log.Println("Routes configured")
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	return r.app.Listen(address)
}

// GetApp returns the underlying Fiber application
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

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

	// CORS middleware
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.cfg.Security.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
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
		MaxAge: utils.CORSMaxAge,
	}))

	// Compression middleware
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Structured request logging
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			// Skip logging for health checks in production
			return c.Path() == "/api/v1/health"
		},
	}))

	if r.cfg.Server.EnableMetrics {
		r.app.Use(middleware.Metrics())
	}

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
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

func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	status := fiber.StatusOK
	checks := map[string]string{}

	if r.dbProbe != nil {
		if err := r.dbProbe(); err != nil {
			checks["database"] = "down"
			status = fiber.StatusServiceUnavailable
		} else {
			checks["database"] = "up"
		}
	}
	if r.cacheProbe != nil {
		if err := r.cacheProbe(); err != nil {
			checks["redis"] = "down"
			status = fiber.StatusServiceUnavailable
		} else {
			checks["redis"] = "up"
		}
	}

	return c.Status(status).JSON(dto.APIResponse{
		Success: status == fiber.StatusOK,
		Message: "Health check",
		Data: map[string]any{
			"uptime": time.Since(r.startedAt).String(),
			"time":   utils.UTCNow().Format(time.RFC3339),
			"checks": checks,
		},
	})
}

// errorHandler is the global Fiber error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fiberErr, ok := err.(*fiber.Error); ok {
		code = fiberErr.Code
	}

	log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "Request failed",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
		},
	})
}

func generateRequestID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "req-" + utils.UTCNow().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(buf)
}
