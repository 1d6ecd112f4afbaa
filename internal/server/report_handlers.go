package server

import (
	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/service"
	"github.com/madaghaxx/Noctua/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CreateReport handles POST /api/reports
// @Summary Report a user
// @Description One report per reporter and reported user, optionally pointing at a post
// @Tags reports
// @Accept json
// @Produce json
// @Param request body validation.ReportRequest true "Report"
// @Success 201 {object} models.Report
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /reports [post]
func (s *Server) CreateReport(c *fiber.Ctx) error {
	var req validation.ReportRequest
	if err := bind(c, &req); err != nil {
		return nil
	}
	report, err := s.reportService.CreateReport(c.UserContext(), service.CreateReportInput{
		ReporterID:     currentUserID(c),
		ReportedUserID: req.ReportedUserID,
		ReportedPostID: req.ReportedPostID,
		Reason:         req.Reason,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}
