package repository

import (
	"context"
	"testing"

	"viaguild/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAllocationRepository_GetOrCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAllocationRepository(db)
	ctx := context.Background()

	t.Run("SeedsTierDefault", func(t *testing.T) {
		alloc, err := repo.GetOrCreate(ctx, 1, models.TierGold)
		assert.NoError(t, err)
		assert.Equal(t, 5, alloc.Remaining)

		alloc, err = repo.GetOrCreate(ctx, 1, models.TierSilver)
		assert.NoError(t, err)
		assert.Equal(t, 10, alloc.Remaining)

		alloc, err = repo.GetOrCreate(ctx, 1, models.TierBronze)
		assert.NoError(t, err)
		assert.Equal(t, 20, alloc.Remaining)
	})

	t.Run("ReturnsExistingRow", func(t *testing.T) {
		db.Model(&models.UserBadgeAllocation{}).
			Where("user_id = ? AND tier = ?", 1, models.TierGold).
			Update("remaining", 2)

		alloc, err := repo.GetOrCreate(ctx, 1, models.TierGold)
		assert.NoError(t, err)
		assert.Equal(t, 2, alloc.Remaining)

		var count int64
		db.Model(&models.UserBadgeAllocation{}).Where("user_id = ?", 1).Count(&count)
		assert.Equal(t, int64(3), count)
	})
}

func TestAllocationRepository_ListForUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAllocationRepository(db)
	ctx := context.Background()

	db.Create(&models.UserBadgeAllocation{UserID: 1, Tier: models.TierSilver, Remaining: 4})

	allocs, err := repo.ListForUser(ctx, 1)
	assert.NoError(t, err)
	if assert.Len(t, allocs, 3) {
		assert.Equal(t, models.TierGold, allocs[0].Tier)
		assert.Equal(t, 5, allocs[0].Remaining)
		assert.Equal(t, models.TierSilver, allocs[1].Tier)
		assert.Equal(t, 4, allocs[1].Remaining)
		assert.Equal(t, models.TierBronze, allocs[2].Tier)
		assert.Equal(t, 20, allocs[2].Remaining)
	}
}

func TestAllocationRepository_Replenish(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAllocationRepository(db)
	ctx := context.Background()

	t.Run("UpdatesExisting", func(t *testing.T) {
		db.Create(&models.UserBadgeAllocation{UserID: 1, Tier: models.TierGold, Remaining: 0})

		err := repo.Replenish(ctx, 1, models.TierGold, 5)
		assert.NoError(t, err)

		var alloc models.UserBadgeAllocation
		db.Where("user_id = ? AND tier = ?", 1, models.TierGold).First(&alloc)
		assert.Equal(t, 5, alloc.Remaining)
	})

	t.Run("CreatesMissingRow", func(t *testing.T) {
		err := repo.Replenish(ctx, 2, models.TierBronze, 7)
		assert.NoError(t, err)

		var alloc models.UserBadgeAllocation
		db.Where("user_id = ? AND tier = ?", 2, models.TierBronze).First(&alloc)
		assert.Equal(t, 7, alloc.Remaining)
	})
}
