package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shortr/shortr/internal/models"
)

// MockUserRepository is a testify mock for repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.UserCreate) (*models.User, error) {
	args := m.Called(ctx, user)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockLinkRepository is a testify mock for repository.LinkRepository.
type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) Create(ctx context.Context, link *models.LinkCreate) (*models.ShortLink, error) {
	args := m.Called(ctx, link)
	if l := args.Get(0); l != nil {
		return l.(*models.ShortLink), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLinkRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.ShortLink, error) {
	args := m.Called(ctx, shortCode)
	if l := args.Get(0); l != nil {
		return l.(*models.ShortLink), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLinkRepository) Exists(ctx context.Context, shortCode string) (bool, error) {
	args := m.Called(ctx, shortCode)
	return args.Bool(0), args.Error(1)
}

func (m *MockLinkRepository) ListByUser(ctx context.Context, userID int64) ([]*models.ShortLink, error) {
	args := m.Called(ctx, userID)
	if l := args.Get(0); l != nil {
		return l.([]*models.ShortLink), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLinkRepository) ResolveAndCount(ctx context.Context, shortCode string) (*models.ShortLink, error) {
	args := m.Called(ctx, shortCode)
	if l := args.Get(0); l != nil {
		return l.(*models.ShortLink), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLinkRepository) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// fixedGenerator returns a predetermined sequence of codes.
type fixedGenerator struct {
	codes []string
	next  int
}

func (g *fixedGenerator) Generate() (string, error) {
	if g.next >= len(g.codes) {
		g.next = len(g.codes) - 1
	}
	code := g.codes[g.next]
	g.next++
	return code, nil
}

func (g *fixedGenerator) Length() int {
	if len(g.codes) == 0 {
		return 0
	}
	return len(g.codes[0])
}
