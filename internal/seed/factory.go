// Package seed fills a database with demo data, either from a YAML scenario
// or randomly generated. Everything past the users goes through the services
// so the notification trail matches what real traffic would leave.
package seed

import (
	"fmt"
	"strings"

	"github.com/madaghaxx/Noctua/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const defaultPassword = "password123"

// Factory creates accounts directly, since roles and statuses cannot be set
// through the public registration flow.
type Factory struct {
	db         *gorm.DB
	faker      *gofakeit.Faker
	skipBcrypt bool
}

// NewFactory creates a Factory. A zero seed picks a random one.
func NewFactory(db *gorm.DB, seed int64, skipBcrypt bool) *Factory {
	return &Factory{db: db, faker: gofakeit.New(seed), skipBcrypt: skipBcrypt}
}

// CreateUser persists a fake user after applying spec on top of it.
func (f *Factory) CreateUser(spec UserSpec) (*models.User, error) {
	user := &models.User{
		Username: spec.Username,
		Email:    strings.ToLower(spec.Email),
		Role:     models.RoleUser,
		Status:   models.StatusActive,
		Bio:      f.faker.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
	}
	if user.Username == "" {
		user.Username = f.faker.Username() + f.faker.DigitN(4)
	}
	if user.Email == "" {
		user.Email = strings.ToLower(user.Username) + "@" + f.faker.DomainName()
	}
	if spec.Role != "" {
		user.Role = spec.Role
	}
	if spec.Status != "" {
		user.Status = spec.Status
	}

	password := spec.Password
	if password == "" {
		password = defaultPassword
	}
	if f.skipBcrypt {
		user.Password = password
	} else {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hashed)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return user, nil
}

// Title returns a fake post title.
func (f *Factory) Title() string {
	return strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 8)), ".")
}

// Content returns a fake post body.
func (f *Factory) Content() string {
	return f.faker.Paragraph(1, 3, 8, "\n\n")
}

// Comment returns a fake comment body.
func (f *Factory) Comment() string {
	return f.faker.Sentence(f.faker.Number(4, 16))
}

// Reason returns a fake report reason.
func (f *Factory) Reason() string {
	return f.faker.RandomString([]string{"Spam", "Harassment", "Impersonation", "Off-topic flooding"})
}

// Intn returns a number in [0, n).
func (f *Factory) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return f.faker.Number(0, n-1)
}
