package common

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisKeyPrefix namespaces stride's keys so Flush never touches foreign data.
const redisKeyPrefix = "stride:cache:"

// RedisCacheService implements CacheInterface using Redis
type RedisCacheService struct {
	client *redis.Client
	ctx    context.Context
	log    *zap.SugaredLogger
}

// Ensure RedisCacheService implements CacheInterface
var _ CacheInterface = (*RedisCacheService)(nil)

// NewRedisCacheService wraps an already connected client.
func NewRedisCacheService(client *redis.Client, log *zap.SugaredLogger) *RedisCacheService {
	return &RedisCacheService{
		client: client,
		ctx:    context.Background(),
		log:    log,
	}
}

// Set stores a value in Redis. []byte values are written verbatim, anything
// else is JSON encoded.
func (r *RedisCacheService) Set(key string, value interface{}, duration time.Duration) {
	data, ok := value.([]byte)
	if !ok {
		var err error
		data, err = json.Marshal(value)
		if err != nil {
			r.log.Warnw("Redis cache: failed to marshal value", "key", key, "error", err)
			return
		}
	}

	if err := r.client.Set(r.ctx, redisKeyPrefix+key, data, duration).Err(); err != nil {
		r.log.Warnw("Redis cache: failed to set key", "key", key, "error", err)
	}
}

// Get returns the stored bytes.
func (r *RedisCacheService) Get(key string) (interface{}, bool) {
	data, err := r.client.Get(r.ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		r.log.Warnw("Redis cache: failed to get key", "key", key, "error", err)
		return nil, false
	}
	return data, true
}

// Delete removes a value from Redis by key
func (r *RedisCacheService) Delete(key string) {
	if err := r.client.Del(r.ctx, redisKeyPrefix+key).Err(); err != nil {
		r.log.Warnw("Redis cache: failed to delete key", "key", key, "error", err)
	}
}

// GetOrSet retrieves a value from cache, or loads it using the loader function if not found
func (r *RedisCacheService) GetOrSet(
	key string,
	duration time.Duration,
	loader func() (any, error),
) (interface{}, error) {
	if val, found := r.Get(key); found {
		return val, nil
	}

	val, err := loader()
	if err != nil {
		return nil, err
	}

	r.Set(key, val, duration)
	return val, nil
}

// Flush deletes every stride cache key, scanning in batches.
func (r *RedisCacheService) Flush() {
	iter := r.client.Scan(r.ctx, 0, redisKeyPrefix+"*", 200).Iterator()
	var keys []string
	for iter.Next(r.ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.log.Warnw("Redis cache: scan failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(r.ctx, keys...).Err(); err != nil {
		r.log.Warnw("Redis cache: flush failed", "keys", len(keys), "error", err)
	}
}

// Close closes the Redis connection
func (r *RedisCacheService) Close() error {
	return r.client.Close()
}
