package data

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/bearhouse_ledger/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient returns a client for the quote and fundamentals cache once it answers a ping.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(redisOptions(cfg.Redis))

	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", rdb.Options().Addr, err)
	}
	slog.Info("Redis connected", slog.String("addr", rdb.Options().Addr), slog.Int("db", cfg.Redis.DB), slog.String("pong", pong))

	return rdb, nil
}

func redisOptions(cfg config.Redis) *redis.Options {
	return &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
