package database

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/supportly/backend/internal/config"
)

// OpenRedis returns a connected client, or nil when Redis is unreachable.
// Callers treat a nil client as "feature disabled" (token blacklist,
// session rate limiting).
func OpenRedis(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr()).Msg("Redis connection failed, continuing without Redis")
		rdb.Close()
		return nil
	}

	log.Info().Str("addr", cfg.Addr()).Msg("Redis connection established")
	return rdb
}
