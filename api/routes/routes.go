package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/luckywheel-vn/luckywheel-backend/internal/config"
	"github.com/luckywheel-vn/luckywheel-backend/internal/handlers"
	"github.com/luckywheel-vn/luckywheel-backend/internal/middleware"
	"github.com/luckywheel-vn/luckywheel-backend/pkg/mongodb"
)

// HandlerDependencies groups the handlers wired in cmd/api
type HandlerDependencies struct {
	AuthHandler  *handlers.AuthHandler
	SpinHandler  *handlers.SpinHandler
	AdminHandler *handlers.AdminHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, mongoClient *mongodb.Client, deps HandlerDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	apiLimiter := middleware.NewRateLimiter(
		cfg.RateLimit.APIRequests,
		time.Duration(cfg.RateLimit.APIWindowSec)*time.Second,
	)
	spinLimiter := middleware.NewRateLimiter(
		cfg.RateLimit.SpinRequests,
		time.Duration(cfg.RateLimit.SpinWindowSec)*time.Second,
	)

	// Health check with a live database ping
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		dbStatus := "connected"
		if err := mongoClient.Ping(ctx); err != nil {
			dbStatus = "disconnected"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
			"database":  dbStatus,
		})
	})

	// Public routes
	public := router.Group("/api/v1")
	public.Use(middleware.RateLimitMiddleware(apiLimiter))
	{
		public.POST("/auth/login", deps.AuthHandler.Login)

		public.POST("/check-eligibility", deps.SpinHandler.CheckEligibility)
		public.POST("/spin",
			middleware.SpinRateLimitMiddleware(spinLimiter, cfg.Security.PhonePepper),
			deps.SpinHandler.Spin)
		public.GET("/prizes/:campaignId", deps.SpinHandler.GetPrizes)
	}

	// Admin routes
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.JWTAuthMiddleware(cfg))
	{
		admin.GET("/spins", deps.AdminHandler.ListSpins)
		admin.GET("/statistics", deps.AdminHandler.GetStatistics)
		admin.PUT("/spins/:id/status", deps.AdminHandler.UpdateSpinStatus)

		haravan := admin.Group("/haravan")
		{
			haravan.POST("/create-discount", deps.AdminHandler.CreateDiscount)
			haravan.POST("/refresh-status", deps.AdminHandler.RefreshStatuses)
			haravan.DELETE("/discount/:spinId", deps.AdminHandler.DeleteDiscount)
		}
	}

	return router
}
