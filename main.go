package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"watchshop/internal/cache"
	"watchshop/internal/config"
	"watchshop/internal/database"
	"watchshop/internal/handlers"
	"watchshop/internal/models"
	"watchshop/internal/repositories"
	"watchshop/internal/services"
	"watchshop/pkg/rabbitmq"
)

// application is the wired service together with the resources it owns.
type application struct {
	app      *fiber.App
	mqClient *rabbitmq.Client
	redis    *redis.Client
	logger   *zap.Logger
}

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	a, err := newApplication(cfg, logger)
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}
	defer a.close()

	// --- Start RabbitMQ Consumer ---
	if a.mqClient != nil {
		if err := a.mqClient.ConsumeOrderEvents(orderEventHandler(logger)); err != nil {
			logger.Warn("failed to start RabbitMQ consumer", zap.Error(err))
		}
	}

	// --- Start HTTP Server ---
	go func() {
		logger.Info("starting server", zap.String("port", cfg.AppPort))
		if err := a.app.Listen(cfg.AppPort); err != nil {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	if err := a.app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("error during Fiber shutdown", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		zapCfg.Level = zap.NewAtomicLevelAt(parsed)
	}
	return zapCfg.Build()
}

// newApplication connects every backing service named in cfg and mounts the HTTP routes.
func newApplication(cfg config.Config, logger *zap.Logger) (*application, error) {
	a := &application{logger: logger}

	// --- Database ---
	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseDSN, logger)
	if err != nil {
		return nil, err
	}
	store := repositories.NewGORMStore(db)
	userRepo := repositories.NewGORMUserRepository(db)

	// --- Optional RabbitMQ publisher ---
	// publisher stays a nil interface when RabbitMQ is off, so services skip publishing.
	var publisher services.EventPublisher
	if cfg.RabbitMQEnabled() {
		a.mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: services.OrderExchange}, logger)
		if err != nil {
			return nil, err
		}
		publisher = a.mqClient
	}

	// --- Optional Redis idempotency store ---
	var idempotency services.IdempotencyStore
	if cfg.RedisEnabled() {
		a.redis = cache.NewClient(cfg.RedisAddr)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		idempotency = cache.NewRedisIdempotencyStore(a.redis, cfg.IdempotencyTTL)
	}

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, logger)
	catalogService := services.NewCatalogService(store, logger)
	assemblyService := services.NewAssemblyService(store, logger)
	orderService := services.NewOrderService(store, publisher, idempotency, logger)

	if cfg.AdminUsername != "" && cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authService.EnsureAdmin(cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			a.close()
			return nil, err
		}
	}
	if cfg.SeedCatalog {
		seedCatalog(context.Background(), catalogService, logger)
	}

	// --- Fiber App ---
	a.app = fiber.New()
	a.app.Use(fiberlogger.New()) // Request logger

	api := handlers.NewAPI(authService, catalogService, assemblyService, orderService, logger)
	api.Register(a.app.Group("/api/v1"), authService, logger)

	a.app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": cfg.DatabaseDriver,
			"rabbitmq": a.mqClient != nil,
			"redis":    a.redis != nil,
		})
	})

	return a, nil
}

func (a *application) close() {
	if a.mqClient != nil {
		if err := a.mqClient.Close(); err != nil {
			a.logger.Warn("failed to close RabbitMQ client", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			a.logger.Warn("failed to close Redis client", zap.Error(err))
		}
	}
}

// orderEventHandler logs every order event read back from the broker.
func orderEventHandler(logger *zap.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		event, err := services.DecodeOrderEvent(msg.Body)
		if err != nil {
			return err
		}
		logger.Info("received order event",
			zap.String("event_id", event.EventID),
			zap.String("type", event.Type),
			zap.String("order_id", event.OrderID),
			zap.String("status", string(event.Status)))
		return nil
	}
}

// seedCatalog populates an empty catalog with some initial watches and components.
func seedCatalog(ctx context.Context, catalog *services.CatalogService, logger *zap.Logger) {
	existing, err := catalog.GetAllWatches(ctx)
	if err != nil || len(existing) > 0 {
		return
	}

	watches := []models.Watch{
		{Name: "Seamaster Diver 300M", Description: "Automatic diver", Price: decimal.RequireFromString("5200.00"), Stock: 5, Reference: "210.30.42.20.03.001"},
		{Name: "Speedmaster Professional", Description: "Manual chronograph", Price: decimal.RequireFromString("6400.00"), Stock: 3, Reference: "310.30.42.50.01.001"},
		{Name: "Khaki Field Mechanical", Description: "Hand-wound field watch", Price: decimal.RequireFromString("495.00"), Stock: 12, Reference: "H69439931"},
	}
	for i := range watches {
		if err := catalog.CreateWatch(ctx, &watches[i]); err != nil {
			logger.Warn("failed to seed watch", zap.String("name", watches[i].Name), zap.Error(err))
		}
	}

	components := []models.Component{
		{Name: "Steel Case 40mm", Type: models.ComponentCase, Price: decimal.RequireFromString("180.00"), Stock: 20},
		{Name: "Sunburst Blue Dial", Type: models.ComponentDial, Price: decimal.RequireFromString("95.00"), Stock: 15},
		{Name: "Sword Hands", Type: models.ComponentHands, Price: decimal.RequireFromString("35.00"), Stock: 30},
		{Name: "Ceramic Bezel", Type: models.ComponentBezel, Price: decimal.RequireFromString("120.00"), Stock: 10},
		{Name: "Leather Strap", Type: models.ComponentStrap, Price: decimal.RequireFromString("60.00"), Stock: 25},
		{Name: "Automatic Movement", Type: models.ComponentMovement, Price: decimal.RequireFromString("320.00"), Stock: 8},
		{Name: "Sapphire Crystal", Type: models.ComponentCrystal, Price: decimal.RequireFromString("75.00"), Stock: 18},
	}
	for i := range components {
		if err := catalog.CreateComponent(ctx, &components[i]); err != nil {
			logger.Warn("failed to seed component", zap.String("name", components[i].Name), zap.Error(err))
		}
	}
	logger.Info("catalog seeded", zap.Int("watches", len(watches)), zap.Int("components", len(components)))
}
