package models

import (
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Slug length bounds for user-chosen custom codes.
const (
	MinSlugLength = 3
	MaxSlugLength = 50
)

// slugRegex matches valid custom short codes.
var slugRegex = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)

// reservedSlugs are codes that collide with application routes or are
// otherwise off-limits for user-chosen slugs.
var reservedSlugs = map[string]bool{
	"api":      true,
	"admin":    true,
	"www":      true,
	"app":      true,
	"auth":     true,
	"login":    true,
	"signup":   true,
	"register": true,
	"user":     true,
	"create":   true,
	"custom":   true,
}

// ShortLink represents a short code mapped to an original URL.
type ShortLink struct {
	ID          int64     `json:"id"`
	ShortCode   string    `json:"short_url"`
	OriginalURL string    `json:"full_url"`
	UserID      *int64    `json:"user_id,omitempty"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"created_at"`
}

// LinkCreate represents the data needed to create a new short link.
type LinkCreate struct {
	OriginalURL string
	ShortCode   string
	UserID      *int64
}

// Validate validates the LinkCreate data.
func (c *LinkCreate) Validate() error {
	if c.OriginalURL == "" {
		return ErrEmptyURL
	}
	if !IsValidURL(c.OriginalURL) {
		return ErrInvalidURL
	}
	if c.ShortCode == "" {
		return ErrEmptySlug
	}
	if len(c.ShortCode) > MaxSlugLength {
		return ErrInvalidSlug
	}
	return nil
}

// ValidateSlug checks a user-chosen custom code against the format,
// length, and reserved-word rules.
func ValidateSlug(slug string) error {
	if strings.TrimSpace(slug) == "" {
		return ErrEmptySlug
	}
	if len(slug) < MinSlugLength || len(slug) > MaxSlugLength {
		return ErrInvalidSlug
	}
	if !slugRegex.MatchString(slug) {
		return ErrInvalidSlug
	}
	if reservedSlugs[strings.ToLower(slug)] {
		return ErrReservedSlug
	}
	return nil
}

// IsValidURL checks if the string is a well-formed absolute http(s) URL.
func IsValidURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}

	u, err := url.Parse(s)
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	return u.Host != ""
}
