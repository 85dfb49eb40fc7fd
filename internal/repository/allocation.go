package repository

import (
	"context"
	"errors"

	"viaguild/internal/models"

	"gorm.io/gorm"
)

// AllocationRepository defines persistence operations for tier allocations.
type AllocationRepository interface {
	GetOrCreate(ctx context.Context, userID uint, tier models.BadgeTier) (*models.UserBadgeAllocation, error)
	ListForUser(ctx context.Context, userID uint) ([]models.UserBadgeAllocation, error)
	Replenish(ctx context.Context, userID uint, tier models.BadgeTier, remaining int) error
}

type allocationRepository struct {
	db *gorm.DB
}

// NewAllocationRepository returns a new AllocationRepository implementation.
func NewAllocationRepository(db *gorm.DB) AllocationRepository {
	return &allocationRepository{db: db}
}

// GetOrCreate lazily seeds an allocation row at the tier default the first
// time a user touches a tier.
func (r *allocationRepository) GetOrCreate(ctx context.Context, userID uint, tier models.BadgeTier) (*models.UserBadgeAllocation, error) {
	var alloc models.UserBadgeAllocation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND tier = ?", userID, tier).
		First(&alloc).Error
	if err == nil {
		return &alloc, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}

	alloc = models.UserBadgeAllocation{
		UserID:    userID,
		Tier:      tier,
		Remaining: tier.DefaultAllocation(),
	}
	if err := r.db.WithContext(ctx).Create(&alloc).Error; err != nil {
		if isUniqueConstraintError(err) {
			// Lost the seed race; the row exists now.
			if err := r.db.WithContext(ctx).
				Where("user_id = ? AND tier = ?", userID, tier).
				First(&alloc).Error; err != nil {
				return nil, models.NewInternalError(err)
			}
			return &alloc, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &alloc, nil
}

// ListForUser returns the user's allocation rows, seeding any tier not yet
// materialized so callers always see all three tiers.
func (r *allocationRepository) ListForUser(ctx context.Context, userID uint) ([]models.UserBadgeAllocation, error) {
	allocs := make([]models.UserBadgeAllocation, 0, 3)
	for _, tier := range []models.BadgeTier{models.TierGold, models.TierSilver, models.TierBronze} {
		alloc, err := r.GetOrCreate(ctx, userID, tier)
		if err != nil {
			return nil, err
		}
		allocs = append(allocs, *alloc)
	}
	return allocs, nil
}

func (r *allocationRepository) Replenish(ctx context.Context, userID uint, tier models.BadgeTier, remaining int) error {
	res := r.db.WithContext(ctx).
		Model(&models.UserBadgeAllocation{}).
		Where("user_id = ? AND tier = ?", userID, tier).
		Update("remaining", remaining)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		alloc := models.UserBadgeAllocation{UserID: userID, Tier: tier, Remaining: remaining}
		if err := r.db.WithContext(ctx).Create(&alloc).Error; err != nil {
			return models.NewInternalError(err)
		}
	}
	return nil
}
