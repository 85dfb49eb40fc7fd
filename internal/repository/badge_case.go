package repository

import (
	"context"
	"errors"

	"viaguild/internal/models"

	"gorm.io/gorm"
)

// BadgeCaseRepository defines persistence operations for badge cases.
type BadgeCaseRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID uint, defaultTitle string) (*models.BadgeCase, error)
	GetByUserID(ctx context.Context, userID uint) (*models.BadgeCase, error)
	Update(ctx context.Context, badgeCase *models.BadgeCase) error
	AddItem(ctx context.Context, caseID, instanceID uint) (*models.BadgeCaseItem, error)
	RemoveItem(ctx context.Context, caseID, instanceID uint) error
	Reorder(ctx context.Context, caseID uint, orders map[uint]int) error
}

type badgeCaseRepository struct {
	db *gorm.DB
}

// NewBadgeCaseRepository returns a new BadgeCaseRepository implementation.
func NewBadgeCaseRepository(db *gorm.DB) BadgeCaseRepository {
	return &badgeCaseRepository{db: db}
}

func (r *badgeCaseRepository) preloadItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("Items.BadgeInstance").
		Preload("Items.BadgeInstance.Template").
		Preload("Items.BadgeInstance.Template.FieldDefinitions", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("Items.BadgeInstance.MetadataValues")
}

// GetOrCreateByUserID materializes the user's case on first access.
func (r *badgeCaseRepository) GetOrCreateByUserID(ctx context.Context, userID uint, defaultTitle string) (*models.BadgeCase, error) {
	badgeCase, err := r.GetByUserID(ctx, userID)
	if err == nil {
		return badgeCase, nil
	}
	if models.ErrorCode(err) != models.CodeNotFound {
		return nil, err
	}

	created := models.BadgeCase{
		UserID:   userID,
		Title:    defaultTitle,
		IsPublic: true,
	}
	if err := r.db.WithContext(ctx).Create(&created).Error; err != nil {
		if isUniqueConstraintError(err) {
			return r.GetByUserID(ctx, userID)
		}
		return nil, models.NewInternalError(err)
	}
	created.Items = []models.BadgeCaseItem{}
	return &created, nil
}

func (r *badgeCaseRepository) GetByUserID(ctx context.Context, userID uint) (*models.BadgeCase, error) {
	var badgeCase models.BadgeCase
	if err := r.preloadItems(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		First(&badgeCase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundMessageError("Badge case not found")
		}
		return nil, models.NewInternalError(err)
	}
	return &badgeCase, nil
}

func (r *badgeCaseRepository) Update(ctx context.Context, badgeCase *models.BadgeCase) error {
	if err := r.db.WithContext(ctx).
		Model(&models.BadgeCase{}).
		Where("id = ?", badgeCase.ID).
		Updates(map[string]interface{}{
			"title":     badgeCase.Title,
			"is_public": badgeCase.IsPublic,
		}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// AddItem appends the instance at the end of the case. The global unique
// index on badge_instance_id keeps an instance out of two cases.
func (r *badgeCaseRepository) AddItem(ctx context.Context, caseID, instanceID uint) (*models.BadgeCaseItem, error) {
	var item models.BadgeCaseItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxOrder *int
		if err := tx.Model(&models.BadgeCaseItem{}).
			Where("badge_case_id = ?", caseID).
			Select("MAX(display_order)").
			Scan(&maxOrder).Error; err != nil {
			return models.NewInternalError(err)
		}
		next := 0
		if maxOrder != nil {
			next = *maxOrder + 1
		}

		item = models.BadgeCaseItem{
			BadgeCaseID:     caseID,
			BadgeInstanceID: instanceID,
			DisplayOrder:    next,
		}
		if err := tx.Create(&item).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewConflictError("Badge is already in a case")
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, models.NewInternalError(err)
	}
	return &item, nil
}

func (r *badgeCaseRepository) RemoveItem(ctx context.Context, caseID, instanceID uint) error {
	res := r.db.WithContext(ctx).
		Where("badge_case_id = ? AND badge_instance_id = ?", caseID, instanceID).
		Delete(&models.BadgeCaseItem{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundMessageError("Badge is not in the case")
	}
	return nil
}

// Reorder rewrites display orders in one transaction. Every item in orders
// must belong to the case; a miss rolls the whole reorder back.
func (r *badgeCaseRepository) Reorder(ctx context.Context, caseID uint, orders map[uint]int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for instanceID, order := range orders {
			res := tx.Model(&models.BadgeCaseItem{}).
				Where("badge_case_id = ? AND badge_instance_id = ?", caseID, instanceID).
				Update("display_order", order)
			if res.Error != nil {
				return models.NewInternalError(res.Error)
			}
			if res.RowsAffected == 0 {
				return models.NewValidationError("Reorder references a badge that is not in the case")
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
