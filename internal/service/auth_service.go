package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/madaghaxx/Noctua/internal/auth"
	"github.com/madaghaxx/Noctua/internal/cache"
	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users  repository.UserRepository
	cache  *cache.Cache
	secret string
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, c *cache.Cache, secret string) *AuthService {
	return &AuthService{users: users, cache: c, secret: secret, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" {
		return nil, models.NewValidationError("Username and email are required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, models.NewValidationError("Password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     models.RoleUser,
		Status:   models.StatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.AnalyticsKey)
	return s.issue(user)
}

// Login verifies credentials. Banned accounts are refused even with a valid password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, models.NewInternalError(err)
	}
	if user.IsBanned() {
		return nil, models.NewForbiddenError("Your account has been banned")
	}
	return s.issue(user)
}

// UserStatus returns the account status of userID, cache-aside.
func (s *AuthService) UserStatus(ctx context.Context, userID uint) (models.UserStatus, error) {
	var status models.UserStatus
	err := s.cache.CacheAside(ctx, "user_status", cache.UserStatusKey(userID), &status, cache.UserStatusTTL, func() error {
		var err error
		status, err = s.users.GetStatus(ctx, userID)
		return err
	})
	return status, err
}

// IsAdmin reports whether userID holds the ADMIN role.
func (s *AuthService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := auth.IssueToken(s.secret, user.ID, string(user.Role), s.now())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}
