package server

import (
	"viaguild/internal/models"
	"viaguild/internal/service"
	"viaguild/internal/visual"

	"github.com/gofiber/fiber/v2"
)

type templateRequest struct {
	OwnerType models.EntityType `json:"owner_type"`
	OwnerID   uint              `json:"owner_id"`

	TemplateSlug              string            `json:"template_slug"`
	DefaultBadgeName          string            `json:"default_badge_name" validate:"required,max=100"`
	DefaultSubtitleText       string            `json:"default_subtitle_text" validate:"max=150"`
	DefaultDisplayDescription string            `json:"default_display_description" validate:"max=1000"`
	DefaultOuterShape         models.OuterShape `json:"default_outer_shape"`

	DefaultBorderConfig     *visual.ColorConfig `json:"default_border_config"`
	DefaultBackgroundConfig *visual.ColorConfig `json:"default_background_config"`
	DefaultForegroundConfig *visual.ColorConfig `json:"default_foreground_config"`

	DefaultBorderColor     string `json:"default_border_color"`
	DefaultBackgroundType  string `json:"default_background_type"`
	DefaultBackgroundValue string `json:"default_background_value"`
	DefaultForegroundType  string `json:"default_foreground_type"`
	DefaultForegroundValue string `json:"default_foreground_value"`
	DefaultForegroundColor string `json:"default_foreground_color"`

	InherentTier *models.BadgeTier `json:"inherent_tier"`

	DefinesMeasure        bool     `json:"defines_measure"`
	MeasureLabel          string   `json:"measure_label" validate:"max=100"`
	MeasureBest           *float64 `json:"measure_best"`
	MeasureWorst          *float64 `json:"measure_worst"`
	MeasureIsNormalizable bool     `json:"measure_is_normalizable"`
	HigherIsBetter        bool     `json:"higher_is_better"`
	MeasureBestLabel      string   `json:"measure_best_label" validate:"max=100"`
	MeasureWorstLabel     string   `json:"measure_worst_label" validate:"max=100"`

	AllowsPushedInstanceUpdates bool `json:"allows_pushed_instance_updates"`

	ForegroundSvgContent string `json:"foreground_svg_content"`

	FieldDefinitions []service.MetadataFieldInput `json:"field_definitions" validate:"dive"`
}

// CreateTemplate handles POST /api/badge-templates
func (s *Server) CreateTemplate(c *fiber.Ctx) error {
	var req templateRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	// Default to a personal template when no owner is given.
	ownerType := req.OwnerType
	ownerID := req.OwnerID
	if ownerType == "" {
		ownerType = models.EntityTypeUser
	}
	if ownerType == models.EntityTypeUser && ownerID == 0 {
		ownerID = callerID(c)
	}
	if ownerType == models.EntityTypeUser && ownerID != callerID(c) {
		return models.RespondWithError(c,
			models.NewForbiddenError("You cannot create templates for another user"))
	}

	template, err := s.templateService.CreateTemplate(c.Context(), service.CreateTemplateInput{
		OwnerType:        ownerType,
		OwnerID:          ownerID,
		AuthoredByUserID: callerID(c),

		TemplateSlug:              req.TemplateSlug,
		DefaultBadgeName:          req.DefaultBadgeName,
		DefaultSubtitleText:       req.DefaultSubtitleText,
		DefaultDisplayDescription: req.DefaultDisplayDescription,
		DefaultOuterShape:         req.DefaultOuterShape,

		DefaultBorderConfig:     req.DefaultBorderConfig,
		DefaultBackgroundConfig: req.DefaultBackgroundConfig,
		DefaultForegroundConfig: req.DefaultForegroundConfig,

		DefaultBorderColor:     req.DefaultBorderColor,
		DefaultBackgroundType:  req.DefaultBackgroundType,
		DefaultBackgroundValue: req.DefaultBackgroundValue,
		DefaultForegroundType:  req.DefaultForegroundType,
		DefaultForegroundValue: req.DefaultForegroundValue,
		DefaultForegroundColor: req.DefaultForegroundColor,

		InherentTier: req.InherentTier,

		DefinesMeasure:        req.DefinesMeasure,
		MeasureLabel:          req.MeasureLabel,
		MeasureBest:           req.MeasureBest,
		MeasureWorst:          req.MeasureWorst,
		MeasureIsNormalizable: req.MeasureIsNormalizable,
		HigherIsBetter:        req.HigherIsBetter,
		MeasureBestLabel:      req.MeasureBestLabel,
		MeasureWorstLabel:     req.MeasureWorstLabel,

		AllowsPushedInstanceUpdates: req.AllowsPushedInstanceUpdates,

		ForegroundSvgContent: req.ForegroundSvgContent,

		FieldDefinitions: req.FieldDefinitions,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(template)
}

// ListMyTemplates handles GET /api/badge-templates
func (s *Server) ListMyTemplates(c *fiber.Ctx) error {
	templates, err := s.templateService.ListTemplates(c.Context(), models.EntityTypeUser, callerID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"templates": templates})
}

// GetTemplate handles GET /api/badge-templates/:id
func (s *Server) GetTemplate(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	template, err := s.templateService.GetTemplateByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(template)
}

type templateUpdateRequest struct {
	TemplateSlug              *string            `json:"template_slug"`
	DefaultBadgeName          *string            `json:"default_badge_name"`
	DefaultSubtitleText       *string            `json:"default_subtitle_text"`
	DefaultDisplayDescription *string            `json:"default_display_description"`
	DefaultOuterShape         *models.OuterShape `json:"default_outer_shape"`

	DefaultBorderConfig     *visual.ColorConfig `json:"default_border_config"`
	DefaultBackgroundConfig *visual.ColorConfig `json:"default_background_config"`
	DefaultForegroundConfig *visual.ColorConfig `json:"default_foreground_config"`

	MeasureLabel      *string `json:"measure_label"`
	MeasureBestLabel  *string `json:"measure_best_label"`
	MeasureWorstLabel *string `json:"measure_worst_label"`

	AllowsPushedInstanceUpdates *bool `json:"allows_pushed_instance_updates"`

	ForegroundSvgContent *string `json:"foreground_svg_content"`
}

// UpdateTemplate handles PATCH /api/badge-templates/:id
func (s *Server) UpdateTemplate(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req templateUpdateRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	template, err := s.templateService.UpdateTemplate(c.Context(), callerID(c), id, service.UpdateTemplateInput{
		TemplateSlug:              req.TemplateSlug,
		DefaultBadgeName:          req.DefaultBadgeName,
		DefaultSubtitleText:       req.DefaultSubtitleText,
		DefaultDisplayDescription: req.DefaultDisplayDescription,
		DefaultOuterShape:         req.DefaultOuterShape,

		DefaultBorderConfig:     req.DefaultBorderConfig,
		DefaultBackgroundConfig: req.DefaultBackgroundConfig,
		DefaultForegroundConfig: req.DefaultForegroundConfig,

		MeasureLabel:      req.MeasureLabel,
		MeasureBestLabel:  req.MeasureBestLabel,
		MeasureWorstLabel: req.MeasureWorstLabel,

		AllowsPushedInstanceUpdates: req.AllowsPushedInstanceUpdates,

		ForegroundSvgContent: req.ForegroundSvgContent,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(template)
}

// DeleteTemplate handles DELETE /api/badge-templates/:id
func (s *Server) DeleteTemplate(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.templateService.DeleteTemplate(c.Context(), callerID(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
