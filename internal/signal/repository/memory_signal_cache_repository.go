package repository

import (
	"context"
	"encoding/json"
	"time"

	"stock-signal-relay/internal/signal/dto"
	"stock-signal-relay/pkg/common"

	gocache "github.com/patrickmn/go-cache"
)

type memorySignalCacheRepository struct {
	cache *gocache.Cache
}

// NewMemorySignalCacheRepository keeps the cached analysis in process memory.
// Nothing survives a restart; meant for local runs and tests.
func NewMemorySignalCacheRepository() SignalCacheRepository {
	return &memorySignalCacheRepository{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

func (r *memorySignalCacheRepository) Get(ctx context.Context) (*dto.CacheEntry, error) {
	v, ok := r.cache.Get(common.SignalCacheID)
	if !ok {
		return nil, nil
	}
	entry := v.(dto.CacheEntry)
	entry.Data = entry.Data.Clone()
	return &entry, nil
}

func (r *memorySignalCacheRepository) Upsert(ctx context.Context, result *dto.AnalysisResult, updatedAt time.Time) error {
	r.cache.Set(common.SignalCacheID, dto.CacheEntry{Data: result.Clone(), UpdatedAt: updatedAt}, gocache.NoExpiration)
	return nil
}

func (r *memorySignalCacheRepository) Ping(ctx context.Context) error {
	return nil
}

func (r *memorySignalCacheRepository) Size(ctx context.Context) (int, error) {
	b, err := json.Marshal(r.cache.Items())
	if err != nil {
		return 0, err
	}
	return len(b), nil
}
