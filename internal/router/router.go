package router // package router defines how HTTP routes are registered for the API

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/bike-store-inventory/internal/access"
	"github.com/iliyamo/bike-store-inventory/internal/config"
	"github.com/iliyamo/bike-store-inventory/internal/handler"
	"github.com/iliyamo/bike-store-inventory/internal/middleware"
)

// Deps carries what the route tables need besides the handlers.
type Deps struct {
	JWTSecret string
	Gate      *access.Gate
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client // nil disables cache and rate limiting
	Logger    *slog.Logger
}

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Health   echo.HandlerFunc
	Auth     *handler.AuthHandler
	Stock    *handler.StockHandler
	Order    *handler.OrderHandler
	Identity *handler.IdentityHandler
	Catalog  *handler.CatalogHandler
}

// New builds the echo instance with global middleware and all routes.
func New(d Deps, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomw.Recover())
	e.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Logger))

	RegisterRoutes(e, h.Health)
	RegisterAuth(e, h.Auth, d.JWTSecret)
	RegisterInventory(e, d, h.Stock)
	RegisterOrders(e, d, h.Order)
	RegisterIdentity(e, d, h.Identity)
	RegisterCatalog(e, d, h.Catalog)
	return e
}

// protected returns the /v1 group behind JWT validation.
func protected(e *echo.Echo, d Deps) *echo.Group {
	return e.Group("/v1", middleware.JWTAuth(d.JWTSecret))
}

// allow is shorthand for the gate check of one route.
func allow(d Deps, res access.Resource, op access.Operation) echo.MiddlewareFunc {
	return middleware.RequirePermission(d.Gate, res, op)
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc) {
	e.GET("/healthz", health)
}

// RegisterAuth registers the token endpoints under /v1/auth and the
// protected /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// logout works with either a refresh token in the body or a bearer
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}
