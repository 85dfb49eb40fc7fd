package server

import (
	"sort"

	"viaguild/internal/icons"

	"github.com/gofiber/fiber/v2"
)

// ListSystemIcons handles GET /api/system-icons
func (s *Server) ListSystemIcons(c *fiber.Ctx) error {
	names := icons.Names()
	sort.Strings(names)
	return c.JSON(fiber.Map{"icons": names})
}

// GetSystemIcon handles GET /api/system-icons/:name. Unknown names get the
// default glyph rather than a 404 so badges always render something.
func (s *Server) GetSystemIcon(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.SendString(icons.Resolve(c.Params("name")))
}
