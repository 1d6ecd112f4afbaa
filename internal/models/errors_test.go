package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NewNotFoundError("Post", 1), fiber.StatusNotFound},
		{"bad request", NewBadRequestError("Cannot subscribe to yourself"), fiber.StatusBadRequest},
		{"validation", NewValidationError("Reason is required"), fiber.StatusBadRequest},
		{"conflict", NewConflictError("You have already reported this user"), fiber.StatusConflict},
		{"unauthorized", NewUnauthorizedError("Authorization required"), fiber.StatusUnauthorized},
		{"forbidden", NewForbiddenError("You can only delete your own posts"), fiber.StatusForbidden},
		{"internal", NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
		{"plain error", errors.New("boom"), fiber.StatusInternalServerError},
		{"wrapped app error", fmt.Errorf("toggle: %w", NewConflictError("retry")), fiber.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestIsCode(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("outer: %w", NewNotFoundError("User", 7))
	assert.True(t, IsCode(err, CodeNotFound))
	assert.False(t, IsCode(err, CodeConflict))
	assert.Equal(t, "User with ID 7 not found", NewNotFoundError("User", 7).Error())
}

func TestReportStatus_Terminal(t *testing.T) {
	t.Parallel()
	assert.False(t, ReportPending.Terminal())
	assert.True(t, ReportResolved.Terminal())
	assert.True(t, ReportDismissed.Terminal())
	assert.False(t, ReportStatus("REOPENED").Valid())
}
