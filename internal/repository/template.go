package repository

import (
	"context"
	"errors"

	"viaguild/internal/models"

	"gorm.io/gorm"
)

// TemplateRepository defines persistence operations for badge templates.
type TemplateRepository interface {
	GetByID(ctx context.Context, id uint) (*models.BadgeTemplate, error)
	GetBySlug(ctx context.Context, ownerType models.EntityType, ownerID uint, slug string) (*models.BadgeTemplate, error)
	SlugExists(ctx context.Context, ownerType models.EntityType, ownerID uint, slug string) (bool, error)
	ListByOwner(ctx context.Context, ownerType models.EntityType, ownerID uint) ([]models.BadgeTemplate, error)
	Create(ctx context.Context, template *models.BadgeTemplate) error
	Update(ctx context.Context, template *models.BadgeTemplate) error
	Delete(ctx context.Context, id uint) error
	CountLiveInstances(ctx context.Context, templateID uint) (int64, error)
}

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository returns a new TemplateRepository implementation.
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) GetByID(ctx context.Context, id uint) (*models.BadgeTemplate, error) {
	var template models.BadgeTemplate
	if err := r.db.WithContext(ctx).
		Preload("FieldDefinitions", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Badge template", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &template, nil
}

func (r *templateRepository) GetBySlug(ctx context.Context, ownerType models.EntityType, ownerID uint, slug string) (*models.BadgeTemplate, error) {
	var template models.BadgeTemplate
	if err := r.db.WithContext(ctx).
		Preload("FieldDefinitions", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Where("owner_type = ? AND owner_id = ? AND template_slug = ?", ownerType, ownerID, slug).
		First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundMessageError("Badge template not found")
		}
		return nil, models.NewInternalError(err)
	}
	return &template, nil
}

func (r *templateRepository) SlugExists(ctx context.Context, ownerType models.EntityType, ownerID uint, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BadgeTemplate{}).
		Where("owner_type = ? AND owner_id = ? AND template_slug = ?", ownerType, ownerID, slug).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *templateRepository) ListByOwner(ctx context.Context, ownerType models.EntityType, ownerID uint) ([]models.BadgeTemplate, error) {
	var templates []models.BadgeTemplate
	if err := r.db.WithContext(ctx).
		Preload("FieldDefinitions", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Order("created_at DESC").
		Find(&templates).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return templates, nil
}

func (r *templateRepository) Create(ctx context.Context, template *models.BadgeTemplate) error {
	if err := r.db.WithContext(ctx).Create(template).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A template with this slug already exists for this owner")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *templateRepository) Update(ctx context.Context, template *models.BadgeTemplate) error {
	if err := r.db.WithContext(ctx).Save(template).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A template with this slug already exists for this owner")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *templateRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Where("template_id = ?", id).
		Delete(&models.MetadataFieldDefinition{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Delete(&models.BadgeTemplate{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// CountLiveInstances counts non-revoked instances of a template. Templates
// with live instances cannot be deleted.
func (r *templateRepository) CountLiveInstances(ctx context.Context, templateID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BadgeInstance{}).
		Where("template_id = ? AND revoked_at IS NULL", templateID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
