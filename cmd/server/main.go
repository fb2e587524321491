package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/seu-repo/ev-charge-scheduler/internal/adapter/cache"
	"github.com/seu-repo/ev-charge-scheduler/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/ev-charge-scheduler/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/ev-charge-scheduler/internal/adapter/queue"
	pgdb "github.com/seu-repo/ev-charge-scheduler/internal/adapter/storage/postgres"
	"github.com/seu-repo/ev-charge-scheduler/internal/adapter/vault"
	"github.com/seu-repo/ev-charge-scheduler/internal/adapter/websocket"
	"github.com/seu-repo/ev-charge-scheduler/internal/observability/telemetry"
	"github.com/seu-repo/ev-charge-scheduler/internal/service/health"
	schedulingsvc "github.com/seu-repo/ev-charge-scheduler/internal/service/scheduling"
	"github.com/seu-repo/ev-charge-scheduler/pkg/config"

	// Import metrics to register them
	_ "github.com/seu-repo/ev-charge-scheduler/internal/observability/telemetry"
)

const (
	serviceName    = "ev-charge-scheduler"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting EV Charge Scheduler",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// 3. Initialize OpenTelemetry (Distributed Tracing)
	tracerProvider, err := telemetry.InitTracer(serviceName)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// 3b. Resolve secrets from Vault, if configured, overriding the
	// database URL read from config/env (pkg/config.Load reads the
	// unresolved value; Vault is the higher-trust source when reachable).
	if cfg.Vault.Address != "" {
		secrets, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token)
		if err != nil {
			logger.Warn("Vault not available, falling back to configured secrets", zap.Error(err))
		} else if dbURL, err := secrets.GetDatabaseCredentials(); err != nil {
			logger.Warn("Failed to read database credentials from Vault", zap.Error(err))
		} else {
			cfg.Database.URL = dbURL
		}
	}

	// 4. Initialize PostgreSQL Connection
	db, err := pgdb.NewConnection(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgdb.Close(db)

	// 5. Initialize Redis Cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL, logger)
	if err != nil {
		logger.Warn("Redis not available, running without cache", zap.Error(err))
		redisCache = nil
	}
	if redisCache != nil {
		defer redisCache.Close()
	}

	// 6. Initialize Message Queue (NATS) - Optional
	messageQueue, err := queue.NewNATSQueue(cfg.NATS.URL, logger)
	if err != nil {
		logger.Warn("NATS not available, running without message queue", zap.Error(err))
		messageQueue = nil
	} else {
		defer messageQueue.Close()
	}

	// 7. Initialize Repositories (PostgreSQL-backed)
	commitmentRepo := pgdb.NewCommitmentRepository(db, logger)

	// 8. Initialize Scheduling Service (core domain)
	schedulingConfig := schedulingsvc.DefaultConfig()
	if cfg.Scheduling.IntervalMinutes > 0 {
		schedulingConfig.IntervalMinutes = cfg.Scheduling.IntervalMinutes
	}
	if cfg.Scheduling.Strategy != "" {
		schedulingConfig.Strategy = cfg.Scheduling.Strategy
	}
	if len(cfg.Scheduling.ChargerRatesKW) > 0 {
		schedulingConfig.RateTable = cfg.Scheduling.RateTable()
	}
	schedulingService := schedulingsvc.NewService(commitmentRepo, schedulingConfig, logger)

	// 9. Initialize health service. db is a *gorm.DB and redisCache is the
	// ports.Cache interface; health.Service wants the raw *sql.DB/*redis.Client
	// underneath both so its checkers can Ping them directly.
	healthCfg := &health.Config{
		Version: serviceVersion,
		NatsURL: cfg.NATS.URL,
	}
	if sqlDB, err := db.DB(); err != nil {
		logger.Warn("Failed to get sql.DB for health checks", zap.Error(err))
	} else {
		healthCfg.DB = sqlDB
	}
	if rc, ok := redisCache.(*cache.RedisCache); ok {
		healthCfg.Redis = rc.RawClient()
	}
	healthService := health.NewService(healthCfg, logger)
	healthService.RegisterChecker("commitment_repository", func(ctx context.Context) health.CheckResult {
		start := time.Now()
		_, err := commitmentRepo.FindByVehicle(ctx, "__healthcheck__")
		result := health.CheckResult{
			Name:      "commitment_repository",
			Duration:  time.Since(start),
			Timestamp: time.Now(),
		}
		if err != nil {
			result.Status = health.StatusUnhealthy
			result.Message = err.Error()
		} else {
			result.Status = health.StatusHealthy
			result.Message = "query ok"
		}
		return result
	})

	// 9b. Initialize the live-dashboard broadcast hub.
	schedulingHub := websocket.NewHub()
	go schedulingHub.Run()

	// 10. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.HTTP.AllowedOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	if cfg.RateLimiting.Enabled {
		app.Use(middleware.RateLimitWithConfig(middleware.RateLimitConfig{
			MaxRequests: cfg.RateLimiting.MaxRequests,
			Window:      cfg.RateLimiting.Window,
			ByUser:      cfg.RateLimiting.ByUser,
		}))
	} else {
		app.Use(middleware.RateLimit())
	}
	app.Use(middleware.CircuitBreakerWithLogger(logger))

	// Health Check Endpoints
	healthHandler := health.NewFiberHandler(healthService)
	app.Get("/health/live", healthHandler.Health)
	app.Get("/health/ready", healthHandler.Ready)

	// Metrics endpoint for Prometheus
	app.Get("/metrics", func(c *fiber.Ctx) error {
		handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		handler(c.Context())
		return nil
	})

	// API v1 Routes
	v1 := app.Group("/api/v1")

	// Scheduling routes
	schedulingHandler := handlers.NewSchedulingHandler(schedulingService, commitmentRepo, schedulingHub, logger)
	v1.Post("/scheduling/requests", schedulingHandler.SubmitRequests)
	v1.Get("/scheduling/timetable/:vehicle_id", schedulingHandler.GetTimetable)
	v1.Get("/scheduling/chargers/:id/commitments", schedulingHandler.GetChargerCommitments)

	// Live dashboard feed: pushes each scheduling outcome as it is submitted.
	app.Use("/ws/scheduling", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/scheduling", fiberws.New(func(conn *fiberws.Conn) {
		schedulingHub.AddClient(conn)
	}))

	// 11. Start Dispatcher (only if the message queue is available)
	if messageQueue != nil {
		dispatcher := schedulingsvc.NewDispatcher(commitmentRepo, messageQueue, schedulingConfig, logger)
		go func() {
			if err := dispatcher.Start(context.Background()); err != nil {
				logger.Error("Scheduling dispatcher stopped", zap.Error(err))
			}
		}()
	}

	// 12. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 13. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}
