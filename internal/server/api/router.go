package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"vsh/internal/server/config"
)

// SetupRouter creates and configures the echo router with all routes and middleware.
func SetupRouter(handler *Handler, cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))
	e.Use(RequestLogger())

	// Rate limiter on the resource-creating endpoints only
	createLimiter := middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(cfg.RateLimitRPS),
			Burst: cfg.RateLimitBurst,
		}),
	})

	// Health & stats
	e.GET("/health", handler.HandleHealth)
	e.GET("/api/stats", handler.HandleStats)

	// Sessions
	e.POST("/api/sessions", handler.HandleCreateSession, createLimiter)
	e.GET("/api/sessions/:id", handler.HandleGetSession)
	e.DELETE("/api/sessions/:id", handler.HandleCloseSession)
	e.POST("/api/sessions/:id/commands", handler.HandleExec)
	e.GET("/api/sessions/:id/commands", handler.HandleHistory)

	// Images (rate-limited)
	e.POST("/api/images", handler.HandleUploadImage, createLimiter)

	return e
}
