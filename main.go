package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"katalog/internal/cache"
	"katalog/internal/config"
	"katalog/internal/handlers"
	"katalog/internal/jobs"
	"katalog/internal/logging"
	"katalog/internal/mail"
	"katalog/internal/middleware"
	"katalog/internal/repositories"
	"katalog/internal/server"
	"katalog/internal/services"
	"katalog/internal/workers"
	"katalog/pkg/rabbitmq"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	// --- Database ---
	db, err := repositories.OpenDatabase(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		fatal(logger, "Failed to connect to database", err)
	}
	if err := repositories.AutoMigrate(db); err != nil {
		fatal(logger, "Failed to migrate database", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		fatal(logger, "Failed to access database handle", err)
	}

	// --- Cache ---
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	store := cache.New(redisClient, cfg.RedisTTL)
	if err := store.Ping(context.Background()); err != nil {
		fatal(logger, "Failed to connect to Redis", err)
	}

	// --- Mail ---
	var mailer mail.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:   cfg.SMTPHost,
			Port:   cfg.SMTPPort,
			User:   cfg.SMTPUser,
			Pass:   cfg.SMTPPass,
			Secure: cfg.SMTPSecure,
			From:   cfg.EmailFrom,
		}, logger)
	} else {
		logger.Warn("SMTP_HOST is not set, emails will only be logged")
		mailer = mail.NewLogMailer(logger)
	}

	// --- Job queue ---
	policy := jobs.Policy{Attempts: cfg.JobAttempts, Delay: cfg.JobDelay, Backoff: cfg.JobBackoff}
	var (
		broker      jobs.Broker
		closeBroker func() error
		brokerCheck handlers.HealthCheck
	)
	switch cfg.QueueDriver {
	case "rabbitmq":
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:    cfg.RabbitMQURL,
			Queues: []string{jobs.QueueBrand, jobs.QueueCategory, jobs.QueueProduct},
		}, logger)
		if err != nil {
			fatal(logger, "Failed to initialize RabbitMQ client", err)
		}
		broker, closeBroker, brokerCheck = mqClient, mqClient.Close, mqClient.Ping
	default:
		memBroker := jobs.NewMemoryBroker()
		broker, closeBroker = memBroker, memBroker.Close
	}
	producer := jobs.NewProducer(broker, policy)

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	brandRepo := repositories.NewGORMBrandRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	variantRepo := repositories.NewGORMVariantRepository(db)

	// --- Services ---
	svc := server.Services{
		Auth: services.NewAuthService(userRepo, store, mailer, services.AuthConfig{
			AccessSecret:  cfg.JWTSecret,
			RefreshSecret: cfg.JWTRefreshSecret,
			AccessTTL:     cfg.JWTAccessExpiration,
			RefreshTTL:    cfg.JWTRefreshExpiration,
			BcryptCost:    cfg.BcryptCost,
			ClientHost:    cfg.ClientHost,
		}, logger),
		Users:      services.NewUserService(userRepo, store, cfg.RedisTTL, logger),
		Brands:     services.NewBrandService(brandRepo, store, cfg.RedisTTL, producer, logger),
		Categories: services.NewCategoryService(categoryRepo, store, cfg.RedisTTL, producer, logger),
		Products:   services.NewProductService(productRepo, brandRepo, categoryRepo, store, cfg.RedisTTL, producer, logger),
		Variants:   services.NewVariantService(variantRepo, store, cfg.RedisTTL, logger),
	}

	// --- Workers ---
	runner := jobs.NewRunner(broker, policy, logger)
	workers.Register(runner,
		workers.NewBrandWorker(productRepo, store, logger),
		workers.NewCategoryWorker(productRepo, store, logger),
		workers.NewProductWorker(userRepo, mailer, workers.MailRate, logger),
	)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	workersDone := make(chan struct{})
	var workersErr error
	go func() {
		defer close(workersDone)
		workersErr = runner.Run(workerCtx)
		if workerCtx.Err() == nil {
			logger.Error("Workers stopped before shutdown", "error", workersErr)
		}
	}()

	// --- HTTP ---
	throttle := middleware.ThrottleConfig{Limit: cfg.ThrottleLimit, Window: cfg.ThrottleTTL}
	if limiterStorage, err := middleware.NewRedisStorage(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		logger.Warn("Throttle counters kept in memory", "error", err)
	} else {
		throttle.Storage = limiterStorage
	}

	checks := map[string]handlers.HealthCheck{
		"database": sqlDB.PingContext,
		"cache":    store.Ping,
	}
	if brokerCheck != nil {
		checks["queue"] = brokerCheck
	}

	app := server.New(svc, server.Options{
		APIPrefix:    cfg.APIPrefix,
		CookieSecure: cfg.CookieSecure,
		Throttle:     throttle,
		HealthChecks: checks,
		Logger:       logger,
	})

	go func() {
		logger.Info("Starting server", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := app.Listen(cfg.AppPort); err != nil {
			fatal(logger, "Server failed to start", err)
		}
	}()

	// --- Graceful shutdown ---
	// One operation, so resources close in dependency order.
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"app": shutdownInOrder(logger,
				shutdownStep{"http", app.ShutdownWithContext},
				shutdownStep{"workers", func(ctx context.Context) error {
					stopWorkers()
					select {
					case <-workersDone:
					case <-ctx.Done():
						return ctx.Err()
					}
					if workersErr != nil && !errors.Is(workersErr, context.Canceled) {
						return workersErr
					}
					return nil
				}},
				shutdownStep{"broker", func(context.Context) error {
					return closeBroker()
				}},
				shutdownStep{"throttle", func(context.Context) error {
					if throttle.Storage == nil {
						return nil
					}
					return throttle.Storage.Close()
				}},
				shutdownStep{"cache", func(context.Context) error {
					stats := store.Stats()
					logger.Info("Cache statistics", "hits", stats.Hits, "misses", stats.Misses)
					return store.Close()
				}},
				shutdownStep{"database", func(context.Context) error {
					return sqlDB.Close()
				}},
			),
		},
	)

	exitCode := <-wait
	logger.Info("Server gracefully stopped", "exitCode", exitCode)
	os.Exit(exitCode)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
