package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/table-reservation/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// Options carries what route registration needs besides the handler.
// Redis may be nil, which disables rate limiting and caching.
type Options struct {
	JWTSecret string
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
}

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: health check and metrics.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", handler.Metrics)
}

// RegisterPublic registers unauthenticated browse endpoints.  The branch
// catalog is served through the response cache; availability is computed
// per request and never cached.
func RegisterPublic(e *echo.Echo, h *handler.Handler, opts Options) {
	cache := middleware.NewRedisCache(opts.Cache, opts.Redis)
	e.GET("/v1/branches/:id", h.GetBranch, cache)
	e.GET("/v1/branches/:id/availability", h.Availability)
}

// Register wires every route group.
func Register(e *echo.Echo, h *handler.Handler, opts Options) {
	RegisterRoutes(e)
	RegisterPublic(e, h, opts)
	RegisterCustomer(e, h, opts)
	RegisterStaff(e, h, opts)
}
