package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/config"
	"github.com/BloggingApp/blog-gateway/internal/handler"
	"github.com/BloggingApp/blog-gateway/internal/rabbitmq"
	"github.com/BloggingApp/blog-gateway/internal/repository"
	"github.com/BloggingApp/blog-gateway/internal/repository/pocketbase"
	"github.com/BloggingApp/blog-gateway/internal/repository/postgres"
	"github.com/BloggingApp/blog-gateway/internal/server"
	"github.com/BloggingApp/blog-gateway/internal/service"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := loadEnv(); err != nil {
		logger.Sugar().Panicf("failed to load environment variables: %s", err.Error())
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Sugar().Panicf("failed to initialize yaml config: %s", err.Error())
	}

	store, closeStore := initStore(ctx, cfg, logger)
	defer closeStore()

	redisOptions := &redis.Options{
		Addr: os.Getenv("REDIS_ADDR"),
	}
	rdb := redis.NewClient(redisOptions)
	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		logger.Sugar().Panicf("failed to ping redis: %s", err.Error())
	}
	logger.Sugar().Infof("Successfully connected to Redis: %s", pong)

	var publisher rabbitmq.Publisher = rabbitmq.Noop{}
	if connString := os.Getenv("RABBITMQ_CONN_STRING"); connString != "" {
		mq, err := rabbitmq.New(connString)
		if err != nil {
			logger.Sugar().Panicf("failed to connect to rabbitmq: %s", err.Error())
		}
		publisher = mq
		logger.Info("Successfully connected to RabbitMQ")
	} else {
		logger.Warn("RABBITMQ_CONN_STRING is not set, events will not be published")
	}
	defer publisher.Close()

	repos := repository.New(store, rdb, logger)
	services := service.New(logger, repos, publisher, service.Options{
		FeedPageSize: cfg.FeedPageSize,
		SessionTTL:   cfg.SessionTTL,
		PostCacheTTL: cfg.PostCacheTTL,
		AccessSecret: []byte(cfg.AccessSecret),
	})
	handlers := handler.New(services, logger, cfg.ClientOrigin)

	srv := server.New(config.ServerConfig{
		Port:           cfg.Port,
		Handler:        handlers.InitRoutes(),
		MaxHeaderBytes: 1 << 20,
		ReadTimeout:    time.Second * 10,
		WriteTimeout:   time.Second * 10,
	})
	go func() {
		if err := srv.Run(); err != nil {
			logger.Sugar().Panicf("failed to run http server: %s", err.Error())
		}
	}()

	logger.Sugar().Infof("Server started on port %s with %s store", cfg.Port, cfg.Store.Driver)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Server shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("failed to shut down http server: %s", err.Error())
	}
	if err := rdb.Close(); err != nil {
		logger.Sugar().Errorf("failed to close redis client: %s", err.Error())
	}
}

func initStore(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*repository.Store, func()) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		dbConfig := config.LoadDBConfig()
		if err := postgres.Migrate(dbConfig.DSN()); err != nil {
			logger.Sugar().Panicf("failed to migrate postgres: %s", err.Error())
		}

		db, err := postgres.Connect(ctx, dbConfig)
		if err != nil {
			logger.Sugar().Panicf("failed to connect to postgres: %s", err.Error())
		}
		if err := db.Ping(ctx); err != nil {
			logger.Sugar().Panicf("failed to ping postgres: %s", err.Error())
		}
		logger.Info("Successfully connected to PostgreSQL")

		return postgres.New(db, logger), db.Close
	default:
		logger.Sugar().Infof("Using PocketBase record store at %s", cfg.Store.URL)
		return pocketbase.New(cfg.Store.URL, cfg.Store.Timeout, logger), func() {}
	}
}

// loadEnv reads .env when present. Deployments without the file rely on the
// process environment.
func loadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
