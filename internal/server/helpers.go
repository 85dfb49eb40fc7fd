package server

import (
	"errors"
	"strings"
	"unicode"

	"viaguild/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// validate checks struct tags on request DTOs.
var validate = validator.New()

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseBody parses and validates a JSON request body into dst. On failure it
// writes a 400 response and returns errResponseWritten.
func (s *Server) parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	if err := validate.Struct(dst); err != nil {
		_ = models.RespondWithError(c, models.NewValidationError(validationMessage(err)))
		return errResponseWritten
	}
	return nil
}

// validationMessage renders the first field error in a user-facing form.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			return fe.Field() + " is required"
		case "gte", "min":
			return fe.Field() + " is too small"
		case "lte", "max":
			return fe.Field() + " is too large"
		default:
			return fe.Field() + " is invalid"
		}
	}
	return "Invalid request body"
}

// callerID returns the authenticated user ID set by AuthRequired.
func callerID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}

// requireSelf writes a 403 unless the :username route param refers to the
// authenticated caller. Returns the caller ID.
func (s *Server) requireSelf(c *fiber.Ctx) (uint, error) {
	uid := callerID(c)
	username := c.Params("username")

	user, err := s.userRepo.GetByUsername(c.Context(), username)
	if err != nil {
		_ = models.RespondWithError(c, err)
		return 0, errResponseWritten
	}
	if user == nil {
		_ = models.RespondWithError(c, models.NewNotFoundMessageError("User not found"))
		return 0, errResponseWritten
	}
	if user.ID != uid {
		_ = models.RespondWithError(c, models.NewForbiddenError("You can only manage your own resources"))
		return 0, errResponseWritten
	}
	return uid, nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "instanceId" -> "instance ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}
