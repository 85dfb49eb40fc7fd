package server

import (
	"viaguild/internal/models"
	"viaguild/internal/repository"
	"viaguild/internal/service"
	"viaguild/internal/visual"

	"github.com/gofiber/fiber/v2"
)

type giveBadgeRequest struct {
	TemplateSlug      string            `json:"template_slug" validate:"required"`
	TemplateOwnerType models.EntityType `json:"template_owner_type"`
	TemplateOwnerID   uint              `json:"template_owner_id"`

	ReceiverUsername string `json:"receiver_username"`
	Message          string `json:"message" validate:"max=500"`

	OverrideBadgeName          *string            `json:"override_badge_name"`
	OverrideSubtitle           *string            `json:"override_subtitle"`
	OverrideDisplayDescription *string            `json:"override_display_description"`
	OverrideOuterShape         *models.OuterShape `json:"override_outer_shape"`

	OverrideBorderConfig     *visual.ColorConfig `json:"override_border_config"`
	OverrideBackgroundConfig *visual.ColorConfig `json:"override_background_config"`
	OverrideForegroundConfig *visual.ColorConfig `json:"override_foreground_config"`

	MeasureValue *float64          `json:"measure_value"`
	Metadata     map[string]string `json:"metadata"`
	APIVisible   bool              `json:"api_visible"`
}

func (s *Server) giveInputFromRequest(c *fiber.Ctx, req *giveBadgeRequest) service.GiveBadgeInput {
	ownerType := req.TemplateOwnerType
	ownerID := req.TemplateOwnerID
	if ownerType == "" {
		ownerType = models.EntityTypeUser
	}
	if ownerType == models.EntityTypeUser && ownerID == 0 {
		ownerID = callerID(c)
	}

	return service.GiveBadgeInput{
		GiverID:           callerID(c),
		TemplateOwnerType: ownerType,
		TemplateOwnerID:   ownerID,
		TemplateSlug:      req.TemplateSlug,
		ReceiverUsername:  req.ReceiverUsername,
		Message:           req.Message,

		OverrideBadgeName:          req.OverrideBadgeName,
		OverrideSubtitle:           req.OverrideSubtitle,
		OverrideDisplayDescription: req.OverrideDisplayDescription,
		OverrideOuterShape:         req.OverrideOuterShape,
		OverrideBorderConfig:       req.OverrideBorderConfig,
		OverrideBackgroundConfig:   req.OverrideBackgroundConfig,
		OverrideForegroundConfig:   req.OverrideForegroundConfig,

		MeasureValue: req.MeasureValue,
		Metadata:     req.Metadata,
		APIVisible:   req.APIVisible,
	}
}

// GiveBadge handles POST /api/badges/give
func (s *Server) GiveBadge(c *fiber.Ctx) error {
	var req giveBadgeRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}
	if req.ReceiverUsername == "" {
		return models.RespondWithError(c, models.NewValidationError("receiver_username is required"))
	}

	instance, err := s.awardService.GiveBadge(c.Context(), s.giveInputFromRequest(c, &req))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(instance)
}

type giveBadgesBulkRequest struct {
	giveBadgeRequest
	Recipients []service.BulkRecipient `json:"recipients" validate:"required,min=1,max=100,dive"`
}

// GiveBadgesBulk handles POST /api/badges/give/bulk. Returns 201 when every
// recipient succeeded, 207 when results are mixed.
func (s *Server) GiveBadgesBulk(c *fiber.Ctx) error {
	var req giveBadgesBulkRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}
	base := s.giveInputFromRequest(c, &req.giveBadgeRequest)
	result, err := s.awardService.GiveBadgesBulk(c.Context(), base, req.Recipients)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	status := fiber.StatusCreated
	if len(result.Failed) > 0 {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(result)
}

// GetBadgeDisplay handles GET /api/badges/:id/display
func (s *Server) GetBadgeDisplay(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	props, err := s.badgeService.GetDisplay(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(props)
}

// RevokeBadge handles DELETE /api/badges/:id
func (s *Server) RevokeBadge(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.badgeService.Revoke(c.Context(), callerID(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetBadgeVisibility handles PATCH /api/badges/:id/visibility
func (s *Server) SetBadgeVisibility(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		APIVisible *bool `json:"api_visible" validate:"required"`
	}
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	instance, err := s.badgeService.SetAPIVisibility(c.Context(), callerID(c), id, *req.APIVisible)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(instance)
}

// GetReceivedBadges handles GET /api/users/:username/badges/received. The
// route is public; a bearer token only widens what the owner can see.
func (s *Server) GetReceivedBadges(c *fiber.Ctx) error {
	username := c.Params("username")

	user, err := s.userRepo.GetByUsername(c.Context(), username)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if user == nil {
		return models.RespondWithError(c, models.NewNotFoundMessageError("User not found"))
	}

	// Owners see every accepted badge; everyone else only API-visible ones.
	uid, _ := s.optionalUserID(c)
	publicOnly := user.ID != uid
	badges, err := s.badgeService.ListReceivedDisplay(c.Context(), user.Username, publicOnly)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"badges": badges})
}

// GetGivenBadges handles GET /api/users/:username/badges/given
func (s *Server) GetGivenBadges(c *fiber.Ctx) error {
	uid, err := s.requireSelf(c)
	if err != nil {
		return nil
	}

	filter := repository.GivenFilter{
		IncludeRevoked: c.QueryBool("include_revoked", false),
	}
	if tid := c.QueryInt("template_id", 0); tid > 0 {
		id := uint(tid)
		filter.TemplateID = &id
	}
	if status := c.Query("status"); status != "" {
		st := models.AwardStatus(status)
		filter.Status = &st
	}
	if receiver := c.Query("receiver"); receiver != "" {
		user, err := s.userRepo.GetByUsername(c.Context(), receiver)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		if user == nil {
			return models.RespondWithError(c, models.NewNotFoundMessageError("User not found"))
		}
		filter.ReceiverID = &user.ID
	}

	instances, err := s.badgeService.ListGiven(c.Context(), uid, filter)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"badges": instances})
}

// GetAllocations handles GET /api/users/:username/badges/allocations
func (s *Server) GetAllocations(c *fiber.Ctx) error {
	uid, err := s.requireSelf(c)
	if err != nil {
		return nil
	}
	allocations, err := s.awardService.ListAllocations(c.Context(), uid)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"allocations": allocations})
}
