// Package routes defines HTTP routes for the auth service.
package routes

import (
	"net/http"

	"github.com/FachruDev/backend-codecraft/docs"
	"github.com/FachruDev/backend-codecraft/internal/config"
	"github.com/FachruDev/backend-codecraft/internal/handlers"
	"github.com/FachruDev/backend-codecraft/internal/metrics"
	"github.com/FachruDev/backend-codecraft/internal/middleware"
	"github.com/FachruDev/backend-codecraft/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps bundles everything route wiring needs.
type Deps struct {
	Config        *config.Config
	AuthHandler   *handlers.AuthHandler
	CacheHandler  *handlers.CacheHandler
	HealthHandler *handlers.HealthHandler
	JWTService    service.JWTService
	Redis         *redis.Client
	Metrics       *metrics.Metrics
}

// Setup configures all HTTP routes for the application.
func Setup(router *gin.Engine, deps Deps) {
	router.Use(middleware.Security(middleware.SecurityConfig{
		AllowedOrigins: deps.Config.AllowedOrigins,
	}))

	// Health check
	router.GET("/health", deps.HealthHandler.Check)
	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	globalLimiter := middleware.RateLimiter(deps.Redis, deps.Metrics, middleware.RateLimiterConfig{
		Name:   "global",
		Window: deps.Config.RateLimitWindow,
		Max:    deps.Config.RateLimitMax,
	})
	loginLimiter := middleware.RateLimiter(deps.Redis, deps.Metrics, middleware.RateLimiterConfig{
		Name:              "login",
		Window:            deps.Config.RateLimitWindow,
		Max:               deps.Config.LoginAttemptMax,
		CountOnlyFailures: true,
	})
	authenticate := middleware.Authenticate(deps.JWTService)

	// Auth routes
	v1 := router.Group("/api/v1/auth")
	{
		v1.POST("/register", globalLimiter, deps.AuthHandler.Register)
		v1.POST("/login", globalLimiter, loginLimiter, deps.AuthHandler.Login)
		v1.POST("/refresh", globalLimiter, deps.AuthHandler.Refresh)
		v1.POST("/logout", authenticate, deps.AuthHandler.Logout)
		v1.POST("/logout-all", authenticate, deps.AuthHandler.LogoutAll)
		v1.GET("/tokens", authenticate, deps.AuthHandler.Sessions)
		v1.GET("/me", authenticate, deps.AuthHandler.Me)
		v1.GET("/verify", authenticate, deps.AuthHandler.Verify)

		// Admin maintenance
		v1.POST("/permissions/invalidate",
			authenticate,
			middleware.RequireRole("admin"),
			deps.CacheHandler.Invalidate,
		)
	}

	// Swagger documentation (only if SWAGGER_HOST is configured)
	if deps.Config.SwaggerHost != "" {
		docs.SwaggerInfo.Host = deps.Config.SwaggerHost
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.NoRoute(func(c *gin.Context) {
		handlers.RespondError(c, http.StatusNotFound, "Endpoint not found", "NOT_FOUND")
	})
}
