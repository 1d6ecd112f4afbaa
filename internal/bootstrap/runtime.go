// Package bootstrap opens the runtime dependencies shared by the binaries.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/madaghaxx/Noctua/internal/cache"
	"github.com/madaghaxx/Noctua/internal/config"
	"github.com/madaghaxx/Noctua/internal/database"
	"github.com/madaghaxx/Noctua/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Runtime is what a binary needs to build the services. Redis may be nil.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// Close releases the database pool and the Redis client.
func (r *Runtime) Close() {
	if r.Redis != nil {
		_ = r.Redis.Close()
	}
	if r.DB != nil {
		if sqlDB, err := r.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// InitRuntime connects to the database and Redis and ensures the development
// root admin when configured.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb := cache.InitRedis(cfg.RedisURL)

	if err := EnsureDevRootAdmin(ctx, cfg, db); err != nil {
		return nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	return &Runtime{DB: db, Redis: rdb}, nil
}

// EnsureDevRootAdmin creates the configured admin account, or promotes it if
// the email already exists. It only runs in development with
// DEV_BOOTSTRAP_ROOT enabled.
func EnsureDevRootAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	username := strings.TrimSpace(cfg.DevRootUsername)
	email := strings.ToLower(strings.TrimSpace(cfg.DevRootEmail))
	if username == "" || email == "" {
		return errors.New("DEV_ROOT_USERNAME and DEV_ROOT_EMAIL must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}
	if cfg.DevRootPassword == "" {
		return errors.New("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.DevRootPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root models.User
		findErr := tx.Where("email = ?", email).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{
				Username: username,
				Email:    email,
				Password: string(hashed),
				Role:     models.RoleAdmin,
				Status:   models.StatusActive,
			}
			return tx.Create(&root).Error
		case findErr != nil:
			return findErr
		default:
			return tx.Model(&models.User{}).Where("id = ?", root.ID).
				Updates(map[string]any{"role": models.RoleAdmin, "status": models.StatusActive}).Error
		}
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "development root admin ensured", slog.String("email", email))
	return nil
}
