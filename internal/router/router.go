// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/stagelist/stagelist/internal/config"
	"github.com/stagelist/stagelist/internal/handler"
	"github.com/stagelist/stagelist/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication; a refresh token in the
	// body terminates that session, a bearer terminates all sessions.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ORGANIZER", "PERFORMER"))
	auth.GET("/me", a.Me)

	// Also reachable outside the auth group for expired-access clients.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers the unauthenticated browse endpoints: open
// shows, show details, the public lineup and performer self-signup.
// Browse GETs sit behind the Redis response cache; everything here is
// rate limited per client.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, rdb *redis.Client) {
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	g := e.Group("/v1", limiter)
	g.GET("/shows", p.ListOpenShows, cache)
	g.GET("/shows/:id", p.GetShow, cache)
	g.GET("/shows/:id/lineup", p.GetLineup, cache)
	// Self-signup is rate limited but never cached.
	g.POST("/shows/:id/signups", p.SubmitSignup)
}

// RegisterOrganizer registers showrunner management endpoints. All of
// them require a valid access token with the ORGANIZER role.
func RegisterOrganizer(e *echo.Echo, o *handler.OrganizerHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole("ORGANIZER"))

	g.POST("/showrunners", o.CreateShowrunner)

	g.POST("/shows", o.CreateShow)
	g.PATCH("/shows/:id", o.UpdateShow)
	g.DELETE("/shows/:id", o.DeleteShow)
	g.GET("/my/shows", o.ListMyShows)

	g.POST("/shows/:id/signups/entered", o.AddSignup)
	g.PATCH("/signups/:id/status", o.ChangeStatus)
	g.DELETE("/signups/:id", o.DeleteSignup)

	g.GET("/shows/:id/lineup/audit", o.GetLineup)
	g.PUT("/shows/:id/lineup/order", o.Reorder)
	g.POST("/shows/:id/lineup/allocate", o.Allocate)
}

// RegisterPerformer registers authenticated performer endpoints.
func RegisterPerformer(e *echo.Echo, p *handler.PerformerHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole("PERFORMER", "ORGANIZER"))
	g.GET("/my/signups", p.MySignups)
}
