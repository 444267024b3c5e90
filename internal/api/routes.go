package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/api/handlers"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/middleware"
	"github.com/playmatatu/billiards/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, gm *game.SessionManager, hub *ws.Hub, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if !cfg.IsProduction() {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(gm))
		v1.GET("/config", handlers.GetConfig(cfg))

		sessions := v1.Group("/sessions")
		{
			sessions.GET("", handlers.ListSessions(gm))
			sessions.POST("", handlers.CreateSession(gm, cfg))
			sessions.POST("/:id/join", handlers.JoinSession(gm, cfg))
			sessions.GET("/:id", handlers.GetSession(gm))
			sessions.DELETE("/:id", middleware.RequirePlayerToken(cfg.JWTSecret), handlers.EndSession(gm))
			sessions.GET("/:id/rounds", handlers.GetRounds(gm))
			sessions.GET("/:id/ws", middleware.WebSocketCORSCheck(cfg), ws.HandleSessionWebSocket(hub, cfg.JWTSecret))
		}
	}
}
