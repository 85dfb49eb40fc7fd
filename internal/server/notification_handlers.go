package server

import (
	"viaguild/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	uid := callerID(c)

	notifications, err := s.notificationRepo.ListForUser(c.Context(), uid, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	unread, err := s.notificationRepo.UnreadCount(c.Context(), uid)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.notificationRepo.MarkRead(c.Context(), callerID(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
