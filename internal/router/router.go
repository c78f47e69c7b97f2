package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/jmlee-dev/studycafe-backend/internal/config"
	"github.com/jmlee-dev/studycafe-backend/internal/handler"
	"github.com/jmlee-dev/studycafe-backend/internal/middleware"
	"github.com/jmlee-dev/studycafe-backend/internal/model"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance.  Currently it exposes only a health
// check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterKiosk registers the kiosk surface under /api/kiosk.  Kiosks
// are unauthenticated floor hardware, so the whole group sits behind
// the Redis token-bucket rate limiter instead of JWT.
func RegisterKiosk(e *echo.Echo, k *handler.KioskHandler, rl config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/api/kiosk")
	g.Use(middleware.NewTokenBucket(rl, rdb))

	g.POST("/auth/member-login", k.MemberLogin)
	g.GET("/products", k.ListProducts)
	g.GET("/seats", k.ListSeats)
	g.POST("/purchase", k.Purchase)
	g.POST("/check-in", k.CheckIn)
	g.POST("/check-out", k.CheckOut)
}

// RegisterAuth registers the web auth endpoints.  Unauthenticated
// operations live under /api/auth; the admin console gets its own
// login route.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/api/auth")
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	e.POST("/api/admin/login", a.AdminLogin)
}

// RegisterWeb registers the authenticated member dashboard under
// /api/web.  Every route requires a valid access token; the guest
// role never receives one, so no extra exclusion is needed, but the
// role check documents the intent.
func RegisterWeb(e *echo.Echo, w *handler.WebHandler, jwtSecret string) {
	g := e.Group("/api/web")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(string(model.RoleUser), string(model.RoleAdmin)))

	g.GET("/me", w.Me)
	g.GET("/products", w.ListProducts)
	g.POST("/purchase", w.Purchase)
	g.GET("/mileage", w.MileageHistory)
	g.GET("/todos", w.ListTodos)
	g.POST("/todos/:id/join", w.JoinTodo)
}
