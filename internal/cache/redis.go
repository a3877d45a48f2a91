package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-dashboard-api/internal/models"
)

// Redis is the shared cache driver for multi-instance deployments. Payloads
// are stored as tagged JSON arrays so records round-trip through the record
// envelope. Errors degrade to cache misses.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// NewRedis wraps a connected client. The prefix namespaces keys so
// InvalidateAll only touches this service's entries.
func NewRedis(client *redis.Client, ttl time.Duration, prefix string, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefix == "" {
		prefix = "records:"
	}
	return &Redis{client: client, ttl: ttl, prefix: prefix, logger: logger}
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, key string) ([]models.Record, bool) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	records, err := models.DecodeList(raw)
	if err != nil {
		r.logger.Warn("cache payload corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return records, true
}

// Set implements Store.
func (r *Redis) Set(ctx context.Context, key string, records []models.Record) {
	payload, err := json.Marshal(records)
	if err != nil {
		r.logger.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, payload, r.ttl).Err(); err != nil {
		r.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateAll implements Store. Keys are removed by scanning the prefix;
// precise dependency tracking is not attempted.
func (r *Redis) InvalidateAll(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.logger.Warn("cache delete failed", zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn("cache scan failed", zap.Error(err))
	}
}
