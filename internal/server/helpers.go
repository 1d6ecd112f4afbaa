package server

import (
	"errors"
	"strings"

	"github.com/madaghaxx/Noctua/internal/auth"
	"github.com/madaghaxx/Noctua/internal/middleware"
	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/service"
	"github.com/madaghaxx/Noctua/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten means a helper already committed the response. Handlers
// return nil when they see it so the ErrorHandler does not overwrite it.
var errResponseWritten = errors.New("response already written")

const defaultPageSize = 20

// parsePagination reads limit and offset. The services clamp the values.
func parsePagination(c *fiber.Ctx) service.Page {
	return service.Page{
		Limit:  c.QueryInt("limit", defaultPageSize),
		Offset: c.QueryInt("offset", 0),
	}
}

// parseID extracts a route parameter as a positive uint. On failure it writes
// a 400 response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+strings.ToUpper(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// bind parses the JSON body into dst and validates it. On failure it writes
// the error response and returns errResponseWritten.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	if err := validation.Struct(dst); err != nil {
		_ = models.RespondWithAppError(c, err)
		return errResponseWritten
	}
	return nil
}

// currentUserID returns the id set by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	uid, _ := c.Locals("userID").(uint)
	return uid
}

// optionalUserID reads a bearer token on public routes without enforcing it.
func (s *Server) optionalUserID(c *fiber.Ctx) uint {
	if uid := currentUserID(c); uid != 0 {
		return uid
	}
	parts := strings.SplitN(c.Get("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0
	}
	uid, _, err := auth.ParseToken(s.config.JWTSecret, strings.TrimSpace(parts[1]))
	if err != nil {
		return 0
	}
	return uid
}

// AuthRequired enforces a valid bearer token.
func (s *Server) AuthRequired() fiber.Handler {
	return middleware.AuthRequired(s.config.JWTSecret)
}

// ActiveRequired rejects banned accounts. A token issued before a ban stays
// valid, so the status is checked on every request. Must run after AuthRequired.
func (s *Server) ActiveRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, err := s.authService.UserStatus(c.UserContext(), currentUserID(c))
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Account no longer exists"))
			}
			return models.RespondWithAppError(c, err)
		}
		if status == models.StatusBanned {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Your account has been banned"))
		}
		return c.Next()
	}
}

// AdminRequired rejects non-admin users with 403. Must run after AuthRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		admin, err := s.authService.IsAdmin(c.UserContext(), currentUserID(c))
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// FlagRequired answers 404 when flag is off for the caller.
func (s *Server) FlagRequired(flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.featureFlags.Enabled(flag, currentUserID(c)) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Feature", flag))
		}
		return c.Next()
	}
}

// PublicFlagRequired is FlagRequired for anonymous routes. The caller comes
// from an optional bearer token.
func (s *Server) PublicFlagRequired(flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.featureFlags.Enabled(flag, s.optionalUserID(c)) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Feature", flag))
		}
		return c.Next()
	}
}
