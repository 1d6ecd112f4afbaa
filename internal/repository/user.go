package repository

import (
	"context"

	"github.com/madaghaxx/Noctua/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the identity store operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// LockByID loads the user and holds a row lock until the transaction ends.
	LockByID(ctx context.Context, id uint) (*models.User, error)
	// GetForShare loads the user under a shared lock, blocking while a cascade holds it.
	GetForShare(ctx context.Context, id uint) (*models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
	GetStatus(ctx context.Context, id uint) (models.UserStatus, error)
	SetStatus(ctx context.Context, id uint, status models.UserStatus) error
	SetRole(ctx context.Context, id uint, role models.Role) error
	ListByStatus(ctx context.Context, status models.UserStatus, limit, offset int) ([]models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.UserStatus) (int64, error)
	Delete(ctx context.Context, id uint) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if IsUniqueViolation(err) {
			return models.NewConflictError("Username or email already taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, mapError(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, mapError(err, "User", email)
	}
	return &user, nil
}

func (r *userRepository) LockByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, id).Error
	if err != nil {
		return nil, mapError(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetForShare(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "SHARE"}).
		First(&user, id).Error
	if err != nil {
		return nil, mapError(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, internal(err)
	}
	return count > 0, nil
}

func (r *userRepository) GetStatus(ctx context.Context, id uint) (models.UserStatus, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Select("id", "status").First(&user, id).Error; err != nil {
		return "", mapError(err, "User", id)
	}
	return user.Status, nil
}

func (r *userRepository) SetStatus(ctx context.Context, id uint, status models.UserStatus) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) SetRole(ctx context.Context, id uint, role models.Role) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) ListByStatus(ctx context.Context, status models.UserStatus, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at desc, id desc").
		Limit(limit).Offset(offset).
		Find(&users).Error
	return users, internal(err)
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("created_at desc, id desc").Limit(limit).Offset(offset).Find(&users).Error
	return users, internal(err)
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, internal(err)
}

func (r *userRepository) CountByStatus(ctx context.Context, status models.UserStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("status = ?", status).Count(&count).Error
	return count, internal(err)
}

// Delete removes the user row only; dependent rows are handled by the cascade.
func (r *userRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	return res.RowsAffected, internal(res.Error)
}
