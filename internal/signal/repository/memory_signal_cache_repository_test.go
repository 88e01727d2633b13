package repository

import (
	"context"
	"testing"
	"time"

	"stock-signal-relay/internal/signal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySignalCacheRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySignalCacheRepository()

	entry, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, entry, "missing row is not an error")

	first := &dto.AnalysisResult{Signals: []dto.Signal{{Symbol: "6758", Action: "BUY", Confidence: 80, Reason: "a"}}}
	updatedAt := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx, first, updatedAt))

	second := &dto.AnalysisResult{Signals: []dto.Signal{{Symbol: "7203", Action: "SELL", Confidence: 60, Reason: "b"}}}
	require.NoError(t, repo.Upsert(ctx, second, updatedAt.Add(time.Hour)))

	entry, err = repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, *second, entry.Data)
	assert.Equal(t, updatedAt.Add(time.Hour), entry.UpdatedAt)

	entry.Data.Signals[0].Action = "HOLD"
	again, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SELL", again.Data.Signals[0].Action)

	size, err := repo.Size(ctx)
	require.NoError(t, err)
	assert.Greater(t, size, 0)
	assert.NoError(t, repo.Ping(ctx))
}
