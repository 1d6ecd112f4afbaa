package server

import (
	"github.com/madaghaxx/Noctua/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ToggleSubscription handles POST /api/users/:id/subscribe
// @Summary Toggle subscription
// @Description Subscribes the caller to the user, or unsubscribes if already subscribed
// @Tags users
// @Produce json
// @Param id path int true "Target user ID"
// @Success 200 {object} service.SubscriptionToggleResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/{id}/subscribe [post]
func (s *Server) ToggleSubscription(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.subscriptionService.ToggleSubscription(c.UserContext(), currentUserID(c), targetID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(res)
}

// GetSubscribers handles GET /api/users/:id/subscribers
func (s *Server) GetSubscribers(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	users, err := s.subscriptionService.ListSubscribers(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(users)
}

// GetSubscriptions handles GET /api/users/:id/subscriptions
func (s *Server) GetSubscriptions(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	users, err := s.subscriptionService.ListSubscriptions(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(users)
}

// GetSubscriptionStats handles GET /api/users/:id/subscription-stats
func (s *Server) GetSubscriptionStats(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	stats, err := s.subscriptionService.Stats(c.UserContext(), id, s.optionalUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(stats)
}
