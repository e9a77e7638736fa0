// Package services contains business logic.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/shortr/shortr/internal/models"
	"github.com/shortr/shortr/internal/repository"
	"github.com/shortr/shortr/internal/token"
)

// RegisterRequest represents the input for creating an account.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// LoginRequest represents the input for authenticating.
type LoginRequest struct {
	Email    string
	Password string
}

// AuthResult is the outcome of a successful register or login.
type AuthResult struct {
	User      *models.User
	Token     string
	LoginTime time.Time
}

// AuthService defines the interface for account operations.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
}

// MinBcryptCost is the lowest accepted password hashing work factor.
const MinBcryptCost = 12

// AuthServiceImpl implements AuthService.
type AuthServiceImpl struct {
	users      repository.UserRepository
	tokens     *token.Manager
	bcryptCost int
}

// NewAuthService creates a new AuthService instance. Costs below
// MinBcryptCost are raised to it.
func NewAuthService(users repository.UserRepository, tokens *token.Manager, bcryptCost int) *AuthServiceImpl {
	if bcryptCost < MinBcryptCost {
		bcryptCost = MinBcryptCost
	}
	return &AuthServiceImpl{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Register creates a new account and issues a token for it.
func (s *AuthServiceImpl) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.ErrEmptyName
	}

	email := models.NormalizeEmail(req.Email)
	if !models.IsValidEmail(email) {
		return nil, models.ErrInvalidEmail
	}

	if len(req.Password) < models.MinPasswordLength {
		return nil, models.ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// The unique constraint on email reports duplicates as ErrEmailTaken.
	user, err := s.users.Create(ctx, &models.UserCreate{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		AvatarURL:    models.DefaultAvatarURL(name),
	})
	if err != nil {
		return nil, err
	}

	signed, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: signed}, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password return the same error so accounts cannot be enumerated.
func (s *AuthServiceImpl) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	email := models.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:      user,
		Token:     signed,
		LoginTime: time.Now().UTC(),
	}, nil
}
