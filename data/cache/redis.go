package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/KotFed0t/bearhouse_ledger/config"
	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/utils"
	"github.com/redis/go-redis/v9"
)

const (
	quotePrefix        = "quote:"
	fundamentalsPrefix = "fundamentals:"
)

// ExpiryPolicy decides how long each kind of market data stays cached.
type ExpiryPolicy struct {
	Quotes       time.Duration
	Fundamentals time.Duration
}

func ExpiryPolicyFromConfig(cfg *config.Config) ExpiryPolicy {
	return ExpiryPolicy{
		Quotes:       cfg.Cache.QuotesExpiration,
		Fundamentals: cfg.Cache.FundamentalsExpiration,
	}
}

type RedisCache struct {
	redis  *redis.Client
	expiry ExpiryPolicy
}

func NewRedisCache(redisClient *redis.Client, expiry ExpiryPolicy) *RedisCache {
	return &RedisCache{redis: redisClient, expiry: expiry}
}

// GetQuote returns ok=false on a cache miss.
func (r *RedisCache) GetQuote(ctx context.Context, ticker string) (quote model.Quote, ok bool, err error) {
	ok, err = r.get(ctx, quotePrefix+ticker, &quote)
	return quote, ok, err
}

func (r *RedisCache) SetQuote(ctx context.Context, quote model.Quote) error {
	return r.set(ctx, quotePrefix+quote.Ticker, quote, r.expiry.Quotes)
}

// GetFundamentals returns ok=false on a cache miss.
func (r *RedisCache) GetFundamentals(ctx context.Context, ticker string) (f model.Fundamentals, ok bool, err error) {
	ok, err = r.get(ctx, fundamentalsPrefix+ticker, &f)
	return f, ok, err
}

func (r *RedisCache) SetFundamentals(ctx context.Context, f model.Fundamentals) error {
	return r.set(ctx, fundamentalsPrefix+f.Ticker, f, r.expiry.Fundamentals)
}

// SetFundamentalsBatch writes a whole snapshot through one pipeline.
func (r *RedisCache) SetFundamentalsBatch(ctx context.Context, batch []model.Fundamentals) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisCache.SetFundamentalsBatch"
	slog.Debug("SetFundamentalsBatch start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(batch)))

	pipe := r.redis.Pipeline()
	for _, f := range batch {
		data, err := json.Marshal(f)
		if err != nil {
			slog.Error(
				"can't marshall fundamentals",
				slog.String("rqID", rqID),
				slog.String("op", op),
				slog.String("err", err.Error()),
				slog.String("ticker", f.Ticker),
			)
			return errors.New("can't marshall fundamentals")
		}
		pipe.Set(ctx, fundamentalsPrefix+f.Ticker, data, r.expiry.Fundamentals)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("failed on pipe.Exec", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetFundamentalsBatch completed", slog.String("rqID", rqID), slog.String("op", op))

	return nil
}

func (r *RedisCache) get(ctx context.Context, key string, dest any) (bool, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisCache.get"

	res, err := r.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		slog.Debug("cache miss", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key))
		return false, nil
	}
	if err != nil {
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()), slog.String("key", key))
		return false, err
	}

	err = json.Unmarshal([]byte(res), dest)
	if err != nil {
		slog.Error(
			"can't unmarshall cached value",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return false, errors.New("can't unmarshall cached value")
	}

	return true, nil
}

func (r *RedisCache) set(ctx context.Context, key string, value any, expiration time.Duration) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisCache.set"

	data, err := json.Marshal(value)
	if err != nil {
		slog.Error("can't marshall value", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()), slog.String("key", key))
		return errors.New("can't marshall value")
	}

	err = r.redis.Set(ctx, key, data, expiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()), slog.String("key", key))
		return err
	}

	return nil
}
