// Package models contains domain models and entities.
package models

import "errors"

// Validation and domain errors. The HTTP layer maps each of these to a
// status code; anything not in this set is treated as a storage failure.
var (
	ErrEmptyURL   = errors.New("url cannot be empty")
	ErrInvalidURL = errors.New("invalid url format")

	ErrEmptySlug    = errors.New("custom url cannot be empty")
	ErrInvalidSlug  = errors.New("custom url must be 3-50 characters of letters, digits, '-' or '_'")
	ErrReservedSlug = errors.New("custom url is reserved")
	ErrSlugTaken    = errors.New("custom url is already taken")

	ErrEmptyName        = errors.New("name cannot be empty")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrEmailTaken       = errors.New("an account with this email already exists")

	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrUserNotFound = errors.New("user not found")
	ErrLinkNotFound = errors.New("short link not found")

	ErrRetriesExhausted = errors.New("unable to generate unique identifier")
)
