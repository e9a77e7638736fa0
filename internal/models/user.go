package models

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// emailRegex matches a standard email address shape. Full RFC validation
// is not the goal; the unique constraint on the column is the backstop.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// User represents a registered account.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AvatarURL    string    `json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserCreate represents the data needed to create a new user.
// Email must already be normalized and Password already hashed.
type UserCreate struct {
	Name         string
	Email        string
	PasswordHash string
	AvatarURL    string
}

// Validate validates the UserCreate data.
func (c *UserCreate) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !IsValidEmail(c.Email) {
		return ErrInvalidEmail
	}
	if c.PasswordHash == "" {
		return ErrPasswordTooShort
	}
	return nil
}

// NormalizeEmail lowercases and trims an email address so every lookup
// path uses the same key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail reports whether the string looks like an email address.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// DefaultAvatarURL derives an avatar URL from the display name.
func DefaultAvatarURL(name string) string {
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s", url.QueryEscape(name))
}
