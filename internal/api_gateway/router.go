package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/impairment-ledger/internal/api_gateway/handler"
	"github.com/impairment-ledger/internal/api_gateway/middleware"
	"github.com/impairment-ledger/internal/config"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	authCfg config.AuthConfig,
	impairmentHandler *handler.ImpairmentHandler,
	historyHandler *handler.HistoryHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints, all tenant scoped
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(authCfg.JWTSecret, authCfg.Issuer))
	{
		impairments := v1.Group("/impairments")
		{
			impairments.POST("", impairmentHandler.Action)

			impairments.GET("/settings", impairmentHandler.GetSettings)
			impairments.PUT("/settings", impairmentHandler.UpdateSettings)

			impairments.GET("/locks", impairmentHandler.GetLock)
			impairments.PUT("/locks", impairmentHandler.SetLock)

			impairments.GET("/history", historyHandler.List)

			impairments.POST("/:type/preview", impairmentHandler.Preview)
			impairments.POST("/:type/post", impairmentHandler.Post)
			impairments.GET("/:type/calculations", impairmentHandler.GetCalculation)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
