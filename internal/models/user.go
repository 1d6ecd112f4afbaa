// Package models contains data structures for the application's domain models.
package models

import "time"

// Role is the authorization level of a user.
type Role string

// UserStatus is the account standing of a user.
type UserStatus string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"

	// StatusActive users may log in and act on content.
	StatusActive UserStatus = "ACTIVE"
	// StatusBanned users are locked out until unbanned. Their data is kept.
	StatusBanned UserStatus = "BANNED"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	return s == StatusActive || s == StatusBanned
}

// User represents an identity on the platform.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Username  string     `gorm:"uniqueIndex;not null" json:"username"`
	Email     string     `gorm:"uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	Role      Role       `gorm:"type:varchar(16);not null;default:USER" json:"role"`
	Status    UserStatus `gorm:"type:varchar(16);not null;default:ACTIVE;index" json:"status"`
	Bio       string     `json:"bio"`
	Avatar    string     `json:"avatar"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsBanned reports whether the user is banned.
func (u *User) IsBanned() bool {
	return u.Status == StatusBanned
}
