// Package service implements the business logic layer.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"viaguild/internal/models"
	"viaguild/internal/repository"
	"viaguild/internal/storage"
	"viaguild/internal/validation"
	"viaguild/internal/visual"

	"github.com/google/uuid"
)

// maxSlugSuffix bounds the auto-suffix search when a slug is taken.
const maxSlugSuffix = 999

type TemplateService struct {
	templateRepo repository.TemplateRepository
	store        storage.ObjectStore
	logger       *slog.Logger
}

func NewTemplateService(templateRepo repository.TemplateRepository, store storage.ObjectStore, logger *slog.Logger) *TemplateService {
	return &TemplateService{templateRepo: templateRepo, store: store, logger: logger}
}

// MetadataFieldInput describes one metadata slot on a new template.
type MetadataFieldInput struct {
	DataKey      string `json:"data_key" validate:"required"`
	Label        string `json:"label"`
	Prefix       string `json:"prefix"`
	Suffix       string `json:"suffix"`
	DisplayOrder int    `json:"display_order"`
}

type CreateTemplateInput struct {
	OwnerType        models.EntityType
	OwnerID          uint
	AuthoredByUserID uint

	TemplateSlug              string
	DefaultBadgeName          string
	DefaultSubtitleText       string
	DefaultDisplayDescription string
	DefaultOuterShape         models.OuterShape

	DefaultBorderConfig     *visual.ColorConfig
	DefaultBackgroundConfig *visual.ColorConfig
	DefaultForegroundConfig *visual.ColorConfig

	// Legacy scalar inputs, honored only when the matching config is absent.
	DefaultBorderColor     string
	DefaultBackgroundType  string
	DefaultBackgroundValue string
	DefaultForegroundType  string
	DefaultForegroundValue string
	DefaultForegroundColor string

	InherentTier *models.BadgeTier

	DefinesMeasure        bool
	MeasureLabel          string
	MeasureBest           *float64
	MeasureWorst          *float64
	MeasureIsNormalizable bool
	HigherIsBetter        bool
	MeasureBestLabel      string
	MeasureWorstLabel     string

	AllowsPushedInstanceUpdates bool

	// Pre-transformed SVG markup (a color-remapped icon). When present it is
	// stored directly as the foreground asset in place of the original upload.
	ForegroundSvgContent string

	FieldDefinitions []MetadataFieldInput
}

type UpdateTemplateInput struct {
	TemplateSlug              *string
	DefaultBadgeName          *string
	DefaultSubtitleText       *string
	DefaultDisplayDescription *string
	DefaultOuterShape         *models.OuterShape

	DefaultBorderConfig     *visual.ColorConfig
	DefaultBackgroundConfig *visual.ColorConfig
	DefaultForegroundConfig *visual.ColorConfig

	MeasureLabel      *string
	MeasureBestLabel  *string
	MeasureWorstLabel *string

	AllowsPushedInstanceUpdates *bool

	ForegroundSvgContent *string
}

func (s *TemplateService) GetTemplate(ctx context.Context, ownerType models.EntityType, ownerID uint, slug string) (*models.BadgeTemplate, error) {
	return s.templateRepo.GetBySlug(ctx, ownerType, ownerID, validation.NormalizeSlug(slug))
}

func (s *TemplateService) GetTemplateByID(ctx context.Context, id uint) (*models.BadgeTemplate, error) {
	return s.templateRepo.GetByID(ctx, id)
}

func (s *TemplateService) ListTemplates(ctx context.Context, ownerType models.EntityType, ownerID uint) ([]models.BadgeTemplate, error) {
	return s.templateRepo.ListByOwner(ctx, ownerType, ownerID)
}

func (s *TemplateService) CreateTemplate(ctx context.Context, in CreateTemplateInput) (*models.BadgeTemplate, error) {
	if in.DefaultBadgeName == "" {
		return nil, models.NewValidationError("Badge name is required")
	}
	if in.OwnerType != models.EntityTypeUser && in.OwnerType != models.EntityTypeGuild {
		return nil, models.NewValidationError("Owner type must be USER or GUILD")
	}
	shape := in.DefaultOuterShape
	if shape == "" {
		shape = models.ShapeCircle
	}
	if in.InherentTier != nil && !in.InherentTier.Valid() {
		return nil, models.NewValidationError("Tier must be GOLD, SILVER, or BRONZE")
	}

	borderCfg := visual.MergeLegacyColor(in.DefaultBorderColor, in.DefaultBorderConfig)
	backgroundCfg := in.DefaultBackgroundConfig
	if backgroundCfg == nil {
		backgroundCfg = visual.ConvertLegacyBackground(in.DefaultBackgroundType, in.DefaultBackgroundValue)
	}
	foregroundCfg := in.DefaultForegroundConfig
	if foregroundCfg == nil {
		foregroundCfg = visual.ConvertLegacyForeground(in.DefaultForegroundType, in.DefaultForegroundValue, in.DefaultForegroundColor)
	}

	for _, cfg := range []*visual.ColorConfig{borderCfg, backgroundCfg, foregroundCfg} {
		if cfg != nil && !visual.Validate(cfg) {
			return nil, models.NewValidationError("Invalid visual configuration")
		}
	}

	slug, err := s.resolveSlug(ctx, in.OwnerType, in.OwnerID, in.TemplateSlug, in.DefaultBadgeName)
	if err != nil {
		return nil, err
	}

	if in.ForegroundSvgContent != "" {
		if err := s.storeForegroundSVG(ctx, slug, foregroundCfg, in.ForegroundSvgContent); err != nil {
			return nil, err
		}
	}
	if err := s.commitUploads(ctx, slug, borderCfg, backgroundCfg, foregroundCfg); err != nil {
		return nil, err
	}

	template := &models.BadgeTemplate{
		TemplateSlug:     slug,
		OwnerType:        in.OwnerType,
		OwnerID:          in.OwnerID,
		AuthoredByUserID: in.AuthoredByUserID,

		DefaultBadgeName:          in.DefaultBadgeName,
		DefaultSubtitleText:       in.DefaultSubtitleText,
		DefaultDisplayDescription: in.DefaultDisplayDescription,
		DefaultOuterShape:         shape,

		DefaultBorderConfig:     borderCfg,
		DefaultBackgroundConfig: backgroundCfg,
		DefaultForegroundConfig: foregroundCfg,

		InherentTier: in.InherentTier,

		DefinesMeasure:        in.DefinesMeasure,
		MeasureLabel:          in.MeasureLabel,
		MeasureBest:           in.MeasureBest,
		MeasureWorst:          in.MeasureWorst,
		MeasureIsNormalizable: in.MeasureIsNormalizable,
		HigherIsBetter:        in.HigherIsBetter,
		MeasureBestLabel:      in.MeasureBestLabel,
		MeasureWorstLabel:     in.MeasureWorstLabel,

		// Issuer-driven propagation to issued instances is not supported.
		IsModifiableByIssuer:        false,
		AllowsPushedInstanceUpdates: in.AllowsPushedInstanceUpdates,
	}
	syncLegacyMirrors(template)

	for _, f := range in.FieldDefinitions {
		if f.DataKey == "" {
			return nil, models.NewValidationError("Metadata field data_key is required")
		}
		template.FieldDefinitions = append(template.FieldDefinitions, models.MetadataFieldDefinition{
			DataKey:      f.DataKey,
			Label:        f.Label,
			Prefix:       f.Prefix,
			Suffix:       f.Suffix,
			DisplayOrder: f.DisplayOrder,
		})
	}

	if err := s.templateRepo.Create(ctx, template); err != nil {
		return nil, err
	}

	s.logger.Info("badge template created",
		"template_id", template.ID,
		"slug", template.TemplateSlug,
		"owner_type", template.OwnerType,
		"owner_id", template.OwnerID,
	)
	return template, nil
}

func (s *TemplateService) UpdateTemplate(ctx context.Context, callerID, templateID uint, in UpdateTemplateInput) (*models.BadgeTemplate, error) {
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if err := authorizeTemplateOwner(callerID, template); err != nil {
		return nil, err
	}

	if in.TemplateSlug != nil {
		newSlug := validation.NormalizeSlug(*in.TemplateSlug)
		if err := validation.ValidateTemplateSlug(newSlug); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if newSlug != template.TemplateSlug {
			exists, err := s.templateRepo.SlugExists(ctx, template.OwnerType, template.OwnerID, newSlug)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, models.NewConflictError("A template with this slug already exists for this owner")
			}
			template.TemplateSlug = newSlug
		}
	}

	if in.DefaultBadgeName != nil {
		if *in.DefaultBadgeName == "" {
			return nil, models.NewValidationError("Badge name is required")
		}
		template.DefaultBadgeName = *in.DefaultBadgeName
	}
	if in.DefaultSubtitleText != nil {
		template.DefaultSubtitleText = *in.DefaultSubtitleText
	}
	if in.DefaultDisplayDescription != nil {
		template.DefaultDisplayDescription = *in.DefaultDisplayDescription
	}
	if in.DefaultOuterShape != nil {
		template.DefaultOuterShape = *in.DefaultOuterShape
	}

	if in.DefaultBorderConfig != nil {
		template.DefaultBorderConfig = in.DefaultBorderConfig
	}
	if in.DefaultBackgroundConfig != nil {
		template.DefaultBackgroundConfig = in.DefaultBackgroundConfig
	}
	if in.DefaultForegroundConfig != nil {
		template.DefaultForegroundConfig = in.DefaultForegroundConfig
	}
	for _, cfg := range []*visual.ColorConfig{template.DefaultBorderConfig, template.DefaultBackgroundConfig, template.DefaultForegroundConfig} {
		if cfg != nil && !visual.Validate(cfg) {
			return nil, models.NewValidationError("Invalid visual configuration")
		}
	}
	if in.ForegroundSvgContent != nil && *in.ForegroundSvgContent != "" {
		if err := s.storeForegroundSVG(ctx, template.TemplateSlug, template.DefaultForegroundConfig, *in.ForegroundSvgContent); err != nil {
			return nil, err
		}
	}
	if err := s.commitUploads(ctx, template.TemplateSlug, template.DefaultBorderConfig, template.DefaultBackgroundConfig, template.DefaultForegroundConfig); err != nil {
		return nil, err
	}

	if in.MeasureLabel != nil {
		template.MeasureLabel = *in.MeasureLabel
	}
	if in.MeasureBestLabel != nil {
		template.MeasureBestLabel = *in.MeasureBestLabel
	}
	if in.MeasureWorstLabel != nil {
		template.MeasureWorstLabel = *in.MeasureWorstLabel
	}
	if in.AllowsPushedInstanceUpdates != nil {
		template.AllowsPushedInstanceUpdates = *in.AllowsPushedInstanceUpdates
	}

	template.IsModifiableByIssuer = false
	syncLegacyMirrors(template)

	if err := s.templateRepo.Update(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

// DeleteTemplate removes a template that has no live instances. Revoked
// instances do not block deletion.
func (s *TemplateService) DeleteTemplate(ctx context.Context, callerID, templateID uint) error {
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return err
	}
	if err := authorizeTemplateOwner(callerID, template); err != nil {
		return err
	}

	live, err := s.templateRepo.CountLiveInstances(ctx, template.ID)
	if err != nil {
		return err
	}
	if live > 0 {
		return models.NewConflictError(fmt.Sprintf("Template has %d active badges and cannot be deleted", live))
	}

	if err := s.templateRepo.Delete(ctx, template.ID); err != nil {
		return err
	}
	s.logger.Info("badge template deleted", "template_id", template.ID, "slug", template.TemplateSlug)
	return nil
}

// authorizeTemplateOwner allows the owning user, or for guild-owned templates
// the authoring user standing in for guild management.
func authorizeTemplateOwner(callerID uint, template *models.BadgeTemplate) error {
	if template.OwnerType == models.EntityTypeUser && template.OwnerID == callerID {
		return nil
	}
	if template.OwnerType == models.EntityTypeGuild && template.AuthoredByUserID == callerID {
		return nil
	}
	return models.NewForbiddenError("You do not own this template")
}

// resolveSlug normalizes the requested slug (or derives one from the badge
// name) and appends -1..-999 until it is free for the owner.
func (s *TemplateService) resolveSlug(ctx context.Context, ownerType models.EntityType, ownerID uint, requested, badgeName string) (string, error) {
	base := validation.NormalizeSlug(requested)
	if base == "" {
		base = validation.NormalizeSlug(badgeName)
	}
	if err := validation.ValidateTemplateSlug(base); err != nil {
		return "", models.NewValidationError(err.Error())
	}

	exists, err := s.templateRepo.SlugExists(ctx, ownerType, ownerID, base)
	if err != nil {
		return "", err
	}
	if !exists {
		return base, nil
	}

	for i := 1; i <= maxSlugSuffix; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		exists, err := s.templateRepo.SlugExists(ctx, ownerType, ownerID, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", models.NewConflictError(fmt.Sprintf("Could not find a free slug for %q", base))
}

// storeForegroundSVG stores client-supplied pre-transformed SVG markup as
// the foreground asset, superseding any temporary upload the config still
// references. The superseded temp object is deleted.
func (s *TemplateService) storeForegroundSVG(ctx context.Context, slug string, cfg *visual.ColorConfig, content string) error {
	if cfg == nil {
		return models.NewValidationError("Foreground SVG content requires a foreground configuration")
	}
	if !strings.Contains(content, "<svg") {
		return models.NewValidationError("Foreground content is not SVG markup")
	}
	if s.store == nil {
		return nil
	}

	key := fmt.Sprintf("badge-assets/%s/%s.svg", slug, uuid.New().String())
	url, err := s.store.UploadContent(ctx, key, []byte(content), "image/svg+xml")
	if err != nil {
		return models.NewInternalError(err)
	}

	if assetID, ok := storage.ParseUploadRef(cfg.URL); ok {
		if err := s.store.DeleteTemp(ctx, assetID); err != nil {
			s.logger.Warn("failed to delete superseded temp asset", "asset_id", assetID, "error", err)
		}
	}
	cfg.URL = url
	return nil
}

// commitUploads moves any upload:// temp references inside the configs to
// permanent storage and rewrites the URLs in place.
func (s *TemplateService) commitUploads(ctx context.Context, slug string, configs ...*visual.ColorConfig) error {
	if s.store == nil {
		return nil
	}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		assetID, ok := storage.ParseUploadRef(cfg.URL)
		if !ok {
			continue
		}
		key := fmt.Sprintf("badge-assets/%s/%s", slug, uuid.New().String())
		url, err := s.store.MoveFromTemp(ctx, assetID, key)
		if err != nil {
			return models.NewValidationError(fmt.Sprintf("Uploaded asset %s is no longer available", assetID))
		}
		cfg.URL = url
	}
	return nil
}

// syncLegacyMirrors rewrites the template's legacy scalar columns from its
// config slots so pre-config clients keep reading coherent values.
func syncLegacyMirrors(template *models.BadgeTemplate) {
	template.DefaultBorderColor = visual.ExtractColor(template.DefaultBorderConfig, "")
	template.DefaultBackgroundType, template.DefaultBackgroundValue = visual.DeriveLegacyBackground(template.DefaultBackgroundConfig)
	template.DefaultForegroundType, template.DefaultForegroundValue, template.DefaultForegroundColor = visual.DeriveLegacyForeground(template.DefaultForegroundConfig)
}
