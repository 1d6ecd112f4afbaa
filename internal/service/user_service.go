package service

import (
	"context"

	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/repository"
)

// UserService serves profile reads. Account changes go through AuthService
// and ModerationService.
type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// GetMe returns the caller's own profile.
func (s *UserService) GetMe(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *UserService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// ListUsers returns users newest first.
func (s *UserService) ListUsers(ctx context.Context, page Page) ([]models.User, error) {
	page = page.normalize()
	return s.users.List(ctx, page.Limit, page.Offset)
}
