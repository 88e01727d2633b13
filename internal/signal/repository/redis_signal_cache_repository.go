package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stock-signal-relay/internal/signal/dto"
	"stock-signal-relay/pkg/common"

	"github.com/redis/go-redis/v9"
)

type redisSignalCacheRepository struct {
	client *redis.Client
	key    string
}

// NewRedisSignalCacheRepository stores the cached analysis as one JSON value in Redis.
func NewRedisSignalCacheRepository(client *redis.Client, prefix string) SignalCacheRepository {
	key := common.RedisKeySignalCache
	if prefix != "" {
		key = prefix + ":" + key
	}
	return &redisSignalCacheRepository{client: client, key: key}
}

func (r *redisSignalCacheRepository) Get(ctx context.Context) (*dto.CacheEntry, error) {
	b, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrCacheUnavailable, err)
	}

	var entry dto.CacheEntry
	if err := json.Unmarshal(b, &entry); err != nil {
		return nil, fmt.Errorf("%w: failed to decode cached data: %v", dto.ErrCacheUnavailable, err)
	}
	return &entry, nil
}

func (r *redisSignalCacheRepository) Upsert(ctx context.Context, result *dto.AnalysisResult, updatedAt time.Time) error {
	b, err := json.Marshal(dto.CacheEntry{Data: *result, UpdatedAt: updatedAt})
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}
	if err := r.client.Set(ctx, r.key, b, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", dto.ErrCacheUnavailable, err)
	}
	return nil
}

func (r *redisSignalCacheRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", dto.ErrCacheUnavailable, err)
	}
	return nil
}

func (r *redisSignalCacheRepository) Size(ctx context.Context) (int, error) {
	n, err := r.client.StrLen(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", dto.ErrCacheUnavailable, err)
	}
	return int(n), nil
}
