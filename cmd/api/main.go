// Package main is the entry point for the auth service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/FachruDev/backend-codecraft/docs"
	"github.com/FachruDev/backend-codecraft/internal/cache"
	"github.com/FachruDev/backend-codecraft/internal/config"
	"github.com/FachruDev/backend-codecraft/internal/handlers"
	"github.com/FachruDev/backend-codecraft/internal/metrics"
	"github.com/FachruDev/backend-codecraft/internal/repository"
	"github.com/FachruDev/backend-codecraft/internal/routes"
	"github.com/FachruDev/backend-codecraft/internal/service"
	"github.com/FachruDev/backend-codecraft/pkg/database"
	"github.com/FachruDev/backend-codecraft/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// @title Codecraft Auth Service API
// @version 1.0
// @description Authentication and authorization service for the codecraft CMS backend
// @host localhost:8084
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	// Initialize Redis
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	// Initialize metrics
	serviceMetrics := metrics.New(prometheus.DefaultRegisterer)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)

	// Initialize services
	jwtService := service.NewJWTService(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	authService := service.NewAuthService(userRepo, tokenRepo, jwtService)

	// Initialize permission cache
	permissionCache := cache.NewPermissionCache(userRepo, cfg.PermissionCacheTTL, cfg.PermissionCacheSweep, serviceMetrics)
	defer permissionCache.Close()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, serviceMetrics)
	cacheHandler := handlers.NewCacheHandler(permissionCache)
	healthHandler := handlers.NewHealthHandler()

	// Setup router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	routes.Setup(router, routes.Deps{
		Config:        cfg,
		AuthHandler:   authHandler,
		CacheHandler:  cacheHandler,
		HealthHandler: healthHandler,
		JWTService:    jwtService,
		Redis:         redisClient,
		Metrics:       serviceMetrics,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Periodically purge expired refresh tokens.
	go sweepExpiredTokens(ctx, authService, serviceMetrics, cfg.TokenSweepInterval)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting auth service on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}

func sweepExpiredTokens(ctx context.Context, authService service.AuthService, m *metrics.Metrics, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			count, err := authService.SweepExpiredTokens(ctx)
			if err != nil {
				log.Printf("Failed to sweep expired refresh tokens: %v", err)
				continue
			}
			if count > 0 {
				m.ExpiredTokensSwept.Add(float64(count))
				log.Printf("Cleaned up %d expired refresh tokens", count)
			}
		case <-ctx.Done():
			return
		}
	}
}
