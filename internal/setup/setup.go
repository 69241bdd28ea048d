// Package setup wires configuration, logging, storage and services into a
// ready-to-use application bundle.
package setup

import (
	"context"
	"log"
	"time"

	"github.com/sweatloop/treatwheel/internal/database"
	"github.com/sweatloop/treatwheel/internal/database/service"
	"github.com/sweatloop/treatwheel/internal/engine"
	"github.com/sweatloop/treatwheel/internal/ratelimit"
	"github.com/sweatloop/treatwheel/internal/redis"
	"github.com/sweatloop/treatwheel/internal/setup/config"
	"go.uber.org/zap"
)

// App bundles all core dependencies and services needed by the application.
// Each field represents a major subsystem that needs initialization and cleanup.
type App struct {
	Config        *config.Config
	Logger        *zap.Logger
	DBLogger      *zap.Logger
	DB            database.Client
	RedisManager  *redis.Manager
	Limiter       *ratelimit.Limiter
	Eligibility   *service.EligibilityService
	Notifications *service.NotificationService
	Engine        *engine.Engine
}

// InitializeApp loads configuration, establishes connections and constructs
// the service graph. autoMigrate controls whether pending database
// migrations run during startup.
func InitializeApp(ctx context.Context, logDir string, autoMigrate bool) (*App, error) {
	cfg, configPath, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger, dbLogger, err := GetLoggers(logDir, cfg.Debug.LogLevel, cfg.Debug.MaxLogsToKeep)
	if err != nil {
		return nil, err
	}

	logger.Info("Configuration loaded", zap.String("path", configPath))

	db, err := database.NewConnection(ctx, &cfg.PostgreSQL, dbLogger, autoMigrate)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
		return nil, err
	}

	redisManager := redis.NewManager(&cfg.Redis, logger)

	ratelimitClient, err := redisManager.GetClient(redis.RatelimitDBIndex)
	if err != nil {
		logger.Fatal("Failed to create rate limit Redis client", zap.Error(err))
		return nil, err
	}

	cacheClient, err := redisManager.GetClient(redis.CacheDBIndex)
	if err != nil {
		logger.Fatal("Failed to create cache Redis client", zap.Error(err))
		return nil, err
	}

	limiter := ratelimit.New(ratelimitClient, logger)
	repo := db.Model()

	eligibility := service.NewEligibility(repo.Measurement(), repo.Spin(), &cfg.Wheel, logger)
	notifications := service.NewNotification(
		repo.Notification(), repo.Social(), cacheClient,
		time.Duration(cfg.Notifications.UnreadCacheTTL)*time.Second, logger)

	wheelEngine := engine.New(
		eligibility, notifications, repo.Reward(), repo.Spin(), limiter, cfg, logger)

	return &App{
		Config:        cfg,
		Logger:        logger,
		DBLogger:      dbLogger,
		DB:            db,
		RedisManager:  redisManager,
		Limiter:       limiter,
		Eligibility:   eligibility,
		Notifications: notifications,
		Engine:        wheelEngine,
	}, nil
}

// Cleanup flushes loggers and closes connections. Errors here go to the
// standard logger because zap may already be unusable.
func (a *App) Cleanup() {
	if err := a.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	if err := a.DBLogger.Sync(); err != nil {
		log.Printf("Failed to sync DB logger: %v", err)
	}

	if err := a.DB.Close(); err != nil {
		log.Printf("Failed to close database connection: %v", err)
	}

	a.RedisManager.Close()
}
