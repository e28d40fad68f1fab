package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/schoolms/sms-gateway/internal/cache"
	"github.com/schoolms/sms-gateway/internal/config"
	"github.com/schoolms/sms-gateway/internal/database"
	"github.com/schoolms/sms-gateway/internal/gate"
	"github.com/schoolms/sms-gateway/internal/handlers"
	"github.com/schoolms/sms-gateway/internal/middleware"
	"github.com/schoolms/sms-gateway/internal/relay"
	"github.com/schoolms/sms-gateway/internal/repository"
	"github.com/schoolms/sms-gateway/internal/services"
	"github.com/schoolms/sms-gateway/internal/session"
	"github.com/schoolms/sms-gateway/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize logger
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("backend", cfg.Backend.BaseURL).Msg("Starting SMS gateway")

	// Connect to database (audit trail)
	auditEnabled := cfg.Database.Enabled
	if auditEnabled {
		dbConfig := database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
			LogLevel: cfg.Database.LogLevel,
		}
		if err := database.Connect(dbConfig); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer database.Close()
	} else {
		log.Info().Msg("Database disabled, audit trail off")
	}

	// Initialize cache
	var cacheImpl cache.Cache
	if cfg.Cache.Enabled && cfg.Cache.Type == "redis" {
		addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		cacheImpl, err = cache.NewRedisCache(addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		log.Info().Msg("Redis cache initialized")
	} else {
		cacheImpl = cache.NewMemoryCache()
		log.Info().Msg("Memory cache initialized")
	}
	defer cacheImpl.Close()

	// Backend relay and cookie gateway
	relayClient := relay.New(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout, cfg.Backend.LoginTimeout)
	cookies := session.NewCookies(cfg.IsProduction())

	// Services
	auditRepo := repository.NewAuditRepository()
	auditService := services.NewAuditService(auditRepo, auditEnabled)
	tenantService := services.NewTenantService(relayClient, cacheImpl, cfg.Cache.TTL)

	// Handlers
	healthHandler := handlers.NewHealthHandler(auditEnabled)
	authHandler := handlers.NewAuthHandler(relayClient, cookies, auditService)
	tenantHandler := handlers.NewTenantHandler(tenantService, cookies)
	proxyHandler := handlers.NewProxyHandler(relayClient)

	appHandler, err := handlers.NewAppHandler(cfg.Frontend.UpstreamURL, cfg.Frontend.StaticDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid frontend upstream URL")
	}

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Compress(5))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no gating)
	r.Get("/api/health", healthHandler.Health)
	r.Get("/api/ready", healthHandler.Ready)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		r.Handle("/api/metrics", promhttp.Handler())
	}

	// Auth API (cookie management lives here, never in the gate)
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Post("/refresh", authHandler.Refresh)
		r.Get("/me", authHandler.Me)

		r.Post("/saas/login", authHandler.SaasLogin)
		r.Post("/saas/logout", authHandler.SaasLogout)
		r.Get("/saas/me", authHandler.SaasMe)
	})

	// Tenant chooser support
	r.Post("/api/tenants/choose", tenantHandler.Choose)

	// Everything else under /api/v1 relays to the backend
	r.Handle("/api/v1/*", proxyHandler)

	// Page requests run through the route gate before the app is
	// served
	r.With(gate.Middleware).Handle("/*", appHandler)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
