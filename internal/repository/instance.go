package repository

import (
	"context"
	"errors"
	"time"

	"viaguild/internal/models"

	"gorm.io/gorm"
)

// GivenFilter narrows ListGiven results.
type GivenFilter struct {
	TemplateID     *uint
	Status         *models.AwardStatus
	ReceiverID     *uint
	IncludeRevoked bool
}

// InstanceRepository defines persistence operations for badge instances.
type InstanceRepository interface {
	GetByID(ctx context.Context, id uint) (*models.BadgeInstance, error)
	Award(ctx context.Context, instance *models.BadgeInstance, tier *models.BadgeTier, notification *models.Notification) error
	Update(ctx context.Context, instance *models.BadgeInstance) error
	Revoke(ctx context.Context, id uint, at time.Time) error
	ListReceived(ctx context.Context, receiverType models.EntityType, receiverID uint, apiVisibleOnly bool) ([]models.BadgeInstance, error)
	ListGiven(ctx context.Context, giverType models.EntityType, giverID uint, filter GivenFilter) ([]models.BadgeInstance, error)
}

type instanceRepository struct {
	db *gorm.DB
}

// NewInstanceRepository returns a new InstanceRepository implementation.
func NewInstanceRepository(db *gorm.DB) InstanceRepository {
	return &instanceRepository{db: db}
}

func (r *instanceRepository) GetByID(ctx context.Context, id uint) (*models.BadgeInstance, error) {
	var instance models.BadgeInstance
	if err := r.db.WithContext(ctx).
		Preload("Template").
		Preload("Template.FieldDefinitions", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("MetadataValues").
		First(&instance, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Badge", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &instance, nil
}

// Award creates the instance, spends one allocation of the tier, and
// records the receiver notification in a single transaction. The decrement
// is a conditional UPDATE; zero rows affected means the giver has no
// allocations left and the whole award rolls back.
func (r *instanceRepository) Award(ctx context.Context, instance *models.BadgeInstance, tier *models.BadgeTier, notification *models.Notification) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(instance).Error; err != nil {
			return models.NewInternalError(err)
		}

		if tier != nil {
			res := tx.Model(&models.UserBadgeAllocation{}).
				Where("user_id = ? AND tier = ? AND remaining > 0", instance.GiverID, *tier).
				UpdateColumn("remaining", gorm.Expr("remaining - 1"))
			if res.Error != nil {
				return models.NewInternalError(res.Error)
			}
			if res.RowsAffected == 0 {
				return models.NewInsufficientAllocationError(string(*tier))
			}
		}

		if notification != nil {
			notification.SourceID = &instance.ID
			if err := tx.Create(notification).Error; err != nil {
				return models.NewInternalError(err)
			}
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *instanceRepository) Update(ctx context.Context, instance *models.BadgeInstance) error {
	if err := r.db.WithContext(ctx).Save(instance).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *instanceRepository) Revoke(ctx context.Context, id uint, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.BadgeInstance{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewConflictError("Badge is already revoked")
	}
	return nil
}

// ListReceived returns accepted, non-revoked badges newest first.
func (r *instanceRepository) ListReceived(ctx context.Context, receiverType models.EntityType, receiverID uint, apiVisibleOnly bool) ([]models.BadgeInstance, error) {
	q := r.db.WithContext(ctx).
		Preload("Template").
		Preload("Template.FieldDefinitions", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("MetadataValues").
		Where("receiver_type = ? AND receiver_id = ?", receiverType, receiverID).
		Where("award_status = ? AND revoked_at IS NULL", models.AwardStatusAccepted)
	if apiVisibleOnly {
		q = q.Where("api_visible = ?", true)
	}

	var instances []models.BadgeInstance
	if err := q.Order("assigned_at DESC").Find(&instances).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return instances, nil
}

func (r *instanceRepository) ListGiven(ctx context.Context, giverType models.EntityType, giverID uint, filter GivenFilter) ([]models.BadgeInstance, error) {
	q := r.db.WithContext(ctx).
		Preload("Template").
		Where("giver_type = ? AND giver_id = ?", giverType, giverID)
	if filter.TemplateID != nil {
		q = q.Where("template_id = ?", *filter.TemplateID)
	}
	if filter.Status != nil {
		q = q.Where("award_status = ?", *filter.Status)
	}
	if filter.ReceiverID != nil {
		q = q.Where("receiver_type = ? AND receiver_id = ?", models.EntityTypeUser, *filter.ReceiverID)
	}
	if !filter.IncludeRevoked {
		q = q.Where("revoked_at IS NULL")
	}

	var instances []models.BadgeInstance
	if err := q.Order("assigned_at DESC").Find(&instances).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return instances, nil
}
