package server

import (
	"strings"

	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetAdminReports handles GET /api/admin/reports
// @Summary List reports
// @Description Newest first. Without status every report is returned.
// @Tags admin
// @Produce json
// @Param status query string false "PENDING, RESOLVED or DISMISSED"
// @Success 200 {array} models.Report
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/reports [get]
func (s *Server) GetAdminReports(c *fiber.Ctx) error {
	status := models.ReportStatus(strings.ToUpper(strings.TrimSpace(c.Query("status"))))
	reports, err := s.moderationService.ListReports(c.UserContext(), status, parsePagination(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(reports)
}

// ResolveReport handles POST /api/admin/reports/:id/resolve
// @Summary Resolve a report
// @Description Only PENDING reports can be resolved
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Report ID"
// @Param request body validation.ModerationNoteRequest false "Note"
// @Success 200 {object} models.Report
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/reports/{id}/resolve [post]
func (s *Server) ResolveReport(c *fiber.Ctx) error {
	return s.transitionReport(c, false)
}

// DismissReport handles POST /api/admin/reports/:id/dismiss
func (s *Server) DismissReport(c *fiber.Ctx) error {
	return s.transitionReport(c, true)
}

func (s *Server) transitionReport(c *fiber.Ctx, dismiss bool) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req validation.ModerationNoteRequest
	if len(c.Body()) > 0 {
		if err := bind(c, &req); err != nil {
			return nil
		}
	}

	var report *models.Report
	if dismiss {
		report, err = s.moderationService.DismissReport(c.UserContext(), id, req.Note)
	} else {
		report, err = s.moderationService.ResolveReport(c.UserContext(), id, req.Note)
	}
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(report)
}

// GetAdminUsers handles GET /api/admin/users?status=
func (s *Server) GetAdminUsers(c *fiber.Ctx) error {
	status := models.UserStatus(strings.ToUpper(strings.TrimSpace(c.Query("status"))))
	users, err := s.moderationService.ListUsersByStatus(c.UserContext(), status, parsePagination(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(users)
}

// BanUser handles POST /api/admin/users/:id/ban
// @Summary Ban a user
// @Description The account and its content are kept. Administrators cannot be banned.
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id}/ban [post]
func (s *Server) BanUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.moderationService.BanUser(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// UnbanUser handles POST /api/admin/users/:id/unban
func (s *Server) UnbanUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.moderationService.UnbanUser(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// AdminDeleteUser handles DELETE /api/admin/users/:id
// @Summary Delete a user
// @Description Removes the user and everything that references them in one transaction
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} service.DeletionSummary
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id} [delete]
func (s *Server) AdminDeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	summary, err := s.moderationService.DeleteUser(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(summary)
}

// AdminDeletePost handles DELETE /api/admin/posts/:id
func (s *Server) AdminDeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	summary, err := s.moderationService.DeletePost(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(summary)
}

// HidePost handles POST /api/admin/posts/:id/hide
func (s *Server) HidePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.moderationService.HidePost(c.UserContext(), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"id": id, "hidden": true})
}

// UnhidePost handles POST /api/admin/posts/:id/unhide
func (s *Server) UnhidePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.moderationService.UnhidePost(c.UserContext(), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"id": id, "hidden": false})
}

// GetAnalytics handles GET /api/admin/analytics
// @Summary Platform counters
// @Tags admin
// @Produce json
// @Success 200 {object} service.Analytics
// @Security BearerAuth
// @Router /admin/analytics [get]
func (s *Server) GetAnalytics(c *fiber.Ctx) error {
	a, err := s.moderationService.Analytics(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(a)
}

// GetAdminFeatureFlags handles GET /api/admin/feature-flags
func (s *Server) GetAdminFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"flags":   s.featureFlags.Raw(),
		"enabled": s.featureFlags.Snapshot(currentUserID(c)),
	})
}
