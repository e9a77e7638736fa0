package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		wantErr error
	}{
		{"valid simple", "my-link", nil},
		{"valid with underscore", "my_link_1", nil},
		{"valid minimum length", "abc", nil},
		{"valid maximum length", strings.Repeat("a", MaxSlugLength), nil},
		{"empty", "", ErrEmptySlug},
		{"whitespace only", "   ", ErrEmptySlug},
		{"too short", "ab", ErrInvalidSlug},
		{"too long", strings.Repeat("a", MaxSlugLength+1), ErrInvalidSlug},
		{"contains slash", "my/link", ErrInvalidSlug},
		{"contains space", "my link", ErrInvalidSlug},
		{"contains dot", "my.link", ErrInvalidSlug},
		{"contains unicode", "liénk", ErrInvalidSlug},
		{"reserved api", "api", ErrReservedSlug},
		{"reserved admin", "admin", ErrReservedSlug},
		{"reserved login", "login", ErrReservedSlug},
		{"reserved case insensitive", "ADMIN", ErrReservedSlug},
		{"reserved mixed case", "Login", ErrReservedSlug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlug(tt.slug)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestReservedSlugs_AllRejected(t *testing.T) {
	for _, slug := range []string{"api", "admin", "www", "app", "auth", "login", "signup", "register", "user", "create", "custom"} {
		assert.ErrorIs(t, ValidateSlug(slug), ErrReservedSlug, "slug %q should be reserved", slug)
	}
}

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"valid http", "http://example.com", true},
		{"valid https", "https://example.com/path?q=1", true},
		{"valid with port", "https://example.com:8443/x", true},
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"no scheme", "example.com", false},
		{"ftp scheme", "ftp://example.com", false},
		{"javascript scheme", "javascript:alert(1)", false},
		{"scheme only", "https://", false},
		{"relative path", "/just/a/path", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidURL(tt.url))
		})
	}
}

func TestLinkCreate_Validate(t *testing.T) {
	userID := int64(1)

	t.Run("valid", func(t *testing.T) {
		c := &LinkCreate{OriginalURL: "https://example.com", ShortCode: "abc1234", UserID: &userID}
		assert.NoError(t, c.Validate())
	})

	t.Run("valid without user", func(t *testing.T) {
		c := &LinkCreate{OriginalURL: "https://example.com", ShortCode: "abc1234"}
		assert.NoError(t, c.Validate())
	})

	t.Run("empty url", func(t *testing.T) {
		c := &LinkCreate{ShortCode: "abc1234"}
		assert.ErrorIs(t, c.Validate(), ErrEmptyURL)
	})

	t.Run("invalid url", func(t *testing.T) {
		c := &LinkCreate{OriginalURL: "not-a-url", ShortCode: "abc1234"}
		assert.ErrorIs(t, c.Validate(), ErrInvalidURL)
	})

	t.Run("empty short code", func(t *testing.T) {
		c := &LinkCreate{OriginalURL: "https://example.com"}
		assert.ErrorIs(t, c.Validate(), ErrEmptySlug)
	})

	t.Run("short code too long", func(t *testing.T) {
		c := &LinkCreate{OriginalURL: "https://example.com", ShortCode: strings.Repeat("x", MaxSlugLength+1)}
		assert.ErrorIs(t, c.Validate(), ErrInvalidSlug)
	})
}
