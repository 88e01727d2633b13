package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stock-signal-relay/internal/entity"
	"stock-signal-relay/internal/signal/dto"
	"stock-signal-relay/pkg/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SignalCacheRepository reads and writes the single cached analysis row.
type SignalCacheRepository interface {
	// Get returns the cached entry, or nil with no error when no row exists.
	Get(ctx context.Context) (*dto.CacheEntry, error)
	// Upsert overwrites the cached row.
	Upsert(ctx context.Context, result *dto.AnalysisResult, updatedAt time.Time) error
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
	// Size returns the approximate stored size in bytes.
	Size(ctx context.Context) (int, error)
}

type signalCacheRepository struct {
	db *gorm.DB
}

// NewSignalCacheRepository creates a SignalCacheRepository on the signal_cache table.
func NewSignalCacheRepository(db *gorm.DB) SignalCacheRepository {
	return &signalCacheRepository{db: db}
}

func (r *signalCacheRepository) Get(ctx context.Context) (*dto.CacheEntry, error) {
	var row entity.SignalCache
	result := r.db.WithContext(ctx).Where("id = ?", common.SignalCacheID).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", dto.ErrCacheUnavailable, result.Error)
	}

	var data dto.AnalysisResult
	if err := json.Unmarshal(row.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: failed to decode cached data: %v", dto.ErrCacheUnavailable, err)
	}
	return &dto.CacheEntry{Data: data, UpdatedAt: row.UpdatedAt}, nil
}

func (r *signalCacheRepository) Upsert(ctx context.Context, result *dto.AnalysisResult, updatedAt time.Time) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	row := entity.SignalCache{
		ID:        common.SignalCacheID,
		Data:      data,
		UpdatedAt: updatedAt,
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("%w: %v", dto.ErrCacheUnavailable, err)
	}
	return nil
}

func (r *signalCacheRepository) Ping(ctx context.Context) error {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&entity.SignalCache{}).Limit(1).Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("%w: %v", dto.ErrCacheUnavailable, err)
	}
	return nil
}

func (r *signalCacheRepository) Size(ctx context.Context) (int, error) {
	var rows []entity.SignalCache
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", dto.ErrCacheUnavailable, err)
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}
