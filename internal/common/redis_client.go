package common

import (
	"context"
	"time"

	"runlab/stride/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func NewRedisClient(cfg config.RedisConfig, log *zap.SugaredLogger) *redis.Client {
	log.Infow("[Redis] Initializing Redis client", "addr", cfg.Addr, "db", cfg.DB)

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Errorw("[Redis] Failed to ping Redis", "error", err)
		return client // the pool keeps retrying
	}

	log.Infow("[Redis] Successfully connected to Redis")
	return client
}
