package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/auth"
	"github.com/Hicham-Azeroual/chatApplication/internal/config"
	"github.com/Hicham-Azeroual/chatApplication/internal/database"
	"github.com/Hicham-Azeroual/chatApplication/internal/handlers"
	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"github.com/Hicham-Azeroual/chatApplication/internal/metrics"
	"github.com/Hicham-Azeroual/chatApplication/internal/middleware"
	"github.com/Hicham-Azeroual/chatApplication/internal/statuses"
	"github.com/Hicham-Azeroual/chatApplication/internal/storage"
	"github.com/Hicham-Azeroual/chatApplication/internal/telemetry"
	"github.com/Hicham-Azeroual/chatApplication/internal/validation"
	"github.com/Hicham-Azeroual/chatApplication/internal/websocket"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const serviceName = "chat-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("Chat server starting",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
	)

	// Tracing
	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.Tracing.Endpoint,
		Enabled:      cfg.Tracing.Enabled,
		SamplingRate: cfg.Tracing.SamplingRate,
	})
	if err != nil {
		logger.Log.Warn("Tracing disabled", zap.Error(err))
	}

	metrics.Initialize()

	// Database
	if err := database.Initialize(database.Options{
		Driver:  cfg.Database.Driver,
		DSN:     cfg.Database.DSN(),
		Verbose: !cfg.IsProduction() && cfg.LogLevel == "debug",
		Tracing: cfg.Tracing.Enabled,
	}); err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Optional backing services
	svc, err := buildServices(cfg)
	if err != nil {
		logger.FatalWithFields("Failed to initialize services", err)
	}

	validator := validation.NewServiceValidator(svc.checks())
	if required := validator.RequiredServices(); len(required) > 0 {
		logger.Log.Info("Checking required services", zap.Strings("services", required))
	}
	if err := validator.ValidateServices(context.Background()); err != nil {
		logger.FatalWithFields("Required service unavailable", err)
	}

	authService := auth.NewService([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)

	// Realtime registry
	hub := websocket.NewHub()
	if svc.redis != nil {
		if err := svc.redis.ResetPresence(context.Background()); err != nil {
			logger.Log.Warn("Failed to reset presence mirror", zap.Error(err))
		}
		hub.SetPresenceStore(svc.redis)
	}
	hub.RegisterDefaultHandlers()
	hub.Start()
	wsHandler := websocket.NewHandler(hub, authService, originPattern(cfg.ClientURL))

	// Status expiry sweeper
	sweeper := statuses.NewCleanupService(database.DB, svc.media, cfg.StatusSweepInterval)
	sweeper.Start()

	// Handlers
	chat := handlers.NewHandlers(hub, svc.media)
	chat.SetOptions(handlers.Options{
		MessageEditWindow: cfg.MessageEditWindow,
		StatusTTL:         cfg.StatusTTL,
	})
	authHandlers := handlers.NewAuthHandlers(authService, svc.media, svc.mailer, auth.CookieOptions{
		MaxAge: authService.TokenTTL(),
		Domain: cfg.Auth.CookieDomain,
		Secure: cfg.IsProduction(),
	}, cfg.ClientURL)

	var healthRedis handlers.Pinger
	if svc.redis != nil {
		healthRedis = svc.redis
	}
	health := handlers.NewHealthHandler(hub, healthRedis)

	// Router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	if cfg.Tracing.Enabled {
		r.Use(middleware.TracingMiddleware(serviceName))
		r.Use(middleware.SpanEnrichmentMiddleware())
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.ClientURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws", "/socket"})))

	if svc.redis != nil {
		r.Use(middleware.RedisRateLimitMiddleware(svc.redis, cfg.RateLimitRequests, cfg.RateLimitWindow))
	} else {
		r.Use(middleware.RateLimit())
	}

	r.GET("/health", health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", wsHandler.HandleWebSocket)
	r.GET("/socket", wsHandler.HandleWebSocket)

	if svc.disk != nil {
		r.Static(storage.DiskPrefix, svc.disk.Root())
	}

	handlers.Routes{
		Chat:          chat,
		Auth:          authHandlers,
		Realtime:      wsHandler,
		AuthLimiter:   middleware.RateLimitAuth(),
		UploadLimiter: middleware.RateLimitUpload(),
	}.Register(r.Group("/api"))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Log.Info("Shutting down server", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sweeper.Stop()

	if err := hub.Shutdown(ctx); err != nil {
		logger.Log.Warn("WebSocket shutdown warning", zap.Error(err))
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	if svc.redis != nil {
		if err := svc.redis.Close(); err != nil {
			logger.WarnWithFields("Failed to close redis", err)
		}
	}
	if err := database.Close(); err != nil {
		logger.Log.Warn("Failed to close database", zap.Error(err))
	}
	if tp != nil {
		if err := telemetry.Shutdown(ctx, tp); err != nil {
			logger.Log.Warn("Failed to flush traces", zap.Error(err))
		}
	}

	logger.Log.Info("Server exited")
}
