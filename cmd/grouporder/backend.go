package main

import (
	"context"
	"fmt"

	"grouporder/config"
	"grouporder/internal/delivery"
	"grouporder/internal/domain"
	"grouporder/internal/feed"
	"grouporder/internal/repository"
	"grouporder/internal/session"
	"grouporder/internal/usecase"
	"grouporder/pkg/db"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// backend is the data access port selected by configuration.
type backend struct {
	store    domain.Store
	feed     domain.ChangeFeed
	sessions session.Store
	closers  []func() error
}

func openBackend(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (_ *backend, err error) {
	b := &backend{}
	defer func() {
		if err != nil {
			b.Close(logger)
		}
	}()

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, database.Close)
		logger.Info("Database connection established.")

		if err := db.Migrate(ctx, database); err != nil {
			return nil, err
		}
		b.store = repository.NewPostgresStore(database, logger)
	default:
		logger.Warn("Using in-memory store; data is lost on restart.")
		b.store = repository.NewMemoryStore(logger)
	}

	if cfg.RedisURL == "" {
		b.feed = feed.NewLocalFeed(logger)
		b.sessions = session.NewMemoryStore(cfg.SessionTTL)
		logger.Info("Change feed and sessions kept in process.")
		return b, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	b.closers = append(b.closers, client.Close)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	b.feed = feed.NewRedisFeed(client, cfg.RedisPrefix, logger)
	b.sessions = session.NewRedisStore(client, cfg.RedisPrefix, cfg.SessionTTL)
	logger.Info("Redis connection established.")
	return b, nil
}

func (b *backend) Close(logger *logrus.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			logger.Errorf("Error closing backend: %v", err)
		}
	}
	b.closers = nil
}

func (b *backend) useCases(cfg *config.Config, logger *logrus.Logger) delivery.UseCases {
	uc := delivery.UseCases{
		Auth:    usecase.NewAuthUseCase(b.store, b.sessions, b.feed, logger),
		Catalog: usecase.NewCatalogUseCase(b.store, b.feed, logger),
		Orders:  usecase.NewOrderUseCase(b.store, b.feed, cfg.PublicBaseURL, logger),
	}
	logger.Info("Use cases initialized.")
	return uc
}
