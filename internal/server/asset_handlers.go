package server

import (
	"strings"

	"viaguild/internal/models"
	"viaguild/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// maxAssetSize bounds temp uploads (raw SVG or small raster images).
const maxAssetSize = 1 << 20 // 1 MiB

var allowedAssetTypes = map[string]bool{
	"image/svg+xml": true,
	"image/png":     true,
	"image/jpeg":    true,
	"image/gif":     true,
	"image/webp":    true,
}

// UploadTempAsset handles POST /api/assets/uploads. The body is stored in the
// temporary area and referenced by an upload:// token until a template
// commits it.
func (s *Server) UploadTempAsset(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return models.RespondWithError(c, models.NewValidationError("Request body is empty"))
	}
	if len(body) > maxAssetSize {
		return models.RespondWithError(c, models.NewValidationError("Asset exceeds the 1 MiB limit"))
	}

	mimeType := strings.TrimSpace(strings.Split(c.Get(fiber.HeaderContentType), ";")[0])
	if !allowedAssetTypes[mimeType] {
		return models.RespondWithError(c,
			models.NewValidationError("Unsupported asset type: "+mimeType))
	}

	assetID, err := s.store.SaveTemp(c.Context(), body, mimeType)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"asset_id":  assetID,
		"reference": storage.UploadRef(assetID),
	})
}
