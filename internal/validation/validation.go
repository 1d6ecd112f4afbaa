// Package validation holds the request payloads accepted by the HTTP API and
// the validator that checks them before they reach a service.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/madaghaxx/Noctua/internal/models"

	"github.com/go-playground/validator/v10"
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9_.-]{1,30}[A-Za-z0-9])$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PostRequest is the body of post create and update.
type PostRequest struct {
	Title   string `json:"title" validate:"required,notblank,max=300"`
	Content string `json:"content" validate:"required,notblank,max=50000"`
}

// CommentRequest is the body of comment create and update.
type CommentRequest struct {
	Content string `json:"content" validate:"required,notblank,max=10000"`
}

// ReportRequest is the body of POST /api/reports.
type ReportRequest struct {
	ReportedUserID uint   `json:"reported_user_id" validate:"required"`
	ReportedPostID *uint  `json:"reported_post_id,omitempty" validate:"omitempty,gt=0"`
	Reason         string `json:"reason" validate:"max=2000"`
}

// ModerationNoteRequest is the optional body of resolve and dismiss.
type ModerationNoteRequest struct {
	Note string `json:"note" validate:"max=2000"`
}

// Struct validates v and converts the first failure into a VALIDATION_ERROR.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return models.NewValidationError("Invalid request body")
	}
	return models.NewValidationError(describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "username":
		return fmt.Sprintf("%s must be 3-32 characters of letters, digits, '.', '_' or '-'", field)
	case "gt":
		return fmt.Sprintf("%s must be positive", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
