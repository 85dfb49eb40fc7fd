package server

import (
	"viaguild/internal/models"
	"viaguild/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPublicBadgeCase handles GET /api/users/:username/badgecase/public.
// Anonymous-friendly; private cases are forbidden here even to their owner
// without credentials.
func (s *Server) GetPublicBadgeCase(c *fiber.Ctx) error {
	uid, _ := s.optionalUserID(c)
	view, err := s.caseService.GetCase(c.Context(), uid, c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(view)
}

// GetBadgeCase handles GET /api/users/:username/badgecase
func (s *Server) GetBadgeCase(c *fiber.Ctx) error {
	view, err := s.caseService.GetCase(c.Context(), callerID(c), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(view)
}

// AddBadgeToCase handles POST /api/users/:username/badgecase/badges
func (s *Server) AddBadgeToCase(c *fiber.Ctx) error {
	uid, err := s.requireSelf(c)
	if err != nil {
		return nil
	}
	var req struct {
		BadgeInstanceID uint `json:"badge_instance_id" validate:"required"`
	}
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	view, err := s.caseService.AddBadge(c.Context(), uid, req.BadgeInstanceID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// RemoveBadgeFromCase handles DELETE /api/users/:username/badgecase/badges/:instanceId
func (s *Server) RemoveBadgeFromCase(c *fiber.Ctx) error {
	uid, err := s.requireSelf(c)
	if err != nil {
		return nil
	}
	instanceID, err := s.parseID(c, "instanceId")
	if err != nil {
		return nil
	}

	view, err := s.caseService.RemoveBadge(c.Context(), uid, instanceID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(view)
}

// ReorderBadgeCase handles PATCH /api/users/:username/badgecase/order
func (s *Server) ReorderBadgeCase(c *fiber.Ctx) error {
	uid, err := s.requireSelf(c)
	if err != nil {
		return nil
	}
	var req struct {
		Order []service.ReorderEntry `json:"order" validate:"required,min=1,dive"`
	}
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	view, err := s.caseService.Reorder(c.Context(), uid, req.Order)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(view)
}

// SetBadgeCaseVisibility handles PATCH /api/users/:username/badgecase/visibility
func (s *Server) SetBadgeCaseVisibility(c *fiber.Ctx) error {
	uid, err := s.requireSelf(c)
	if err != nil {
		return nil
	}
	var req struct {
		IsPublic *bool `json:"is_public" validate:"required"`
	}
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	view, err := s.caseService.SetVisibility(c.Context(), uid, *req.IsPublic)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(view)
}
