// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"                      // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"    // Echo's built-in middleware (CORS)
	"github.com/redis/go-redis/v9"                     // Redis client used by the rate limiter

	"github.com/splittab/table-bill-splitting/internal/config"     // rate limit configuration
	"github.com/splittab/table-bill-splitting/internal/handler"    // handlers that implement the API
	"github.com/splittab/table-bill-splitting/internal/middleware" // request middleware (rate limiting)
)

// RegisterRoutes wires every route of the service onto the provided
// Echo instance. Diners reach the API from browsers on their own
// devices, so CORS is open and answers the preflights the original
// frontend sends, including the X-Session-Id header. The Redis-backed
// rate limiter applies to the whole API group; with a nil Redis client
// it degrades to a pass-through.
func RegisterRoutes(e *echo.Echo, bills *handler.BillHandler, seed *handler.SeedHandler, rdb *redis.Client) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderContentType, "X-Session-Id"},
		MaxAge:       86400,
	}))

	v1 := e.Group("/v1")
	v1.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// Bill snapshot: bill + items with live lock status for the caller.
	v1.GET("/bills/:id", bills.GetBill)
	// Claim items for the session (best effort, per-item outcome).
	v1.POST("/bills/:id/lock", bills.LockItems)
	// Give back the session's own claims.
	v1.POST("/bills/:id/unlock", bills.UnlockItems)
	// Settle a payment against claimed items.
	v1.POST("/bills/:id/payments", bills.CreatePayment)
	// Load demo data into an empty database.
	v1.POST("/seed", seed.Seed)
}
