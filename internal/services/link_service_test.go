package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shortr/shortr/internal/models"
	"github.com/shortr/shortr/internal/repository"
)

const testBaseURL = "http://localhost:8080"

func newTestLinkService(repo *MockLinkRepository, codes ...string) *LinkServiceImpl {
	if len(codes) == 0 {
		codes = []string{"abc1234"}
	}
	return NewLinkServiceWithSanitizer(repo, &fixedGenerator{codes: codes}, nil, testBaseURL)
}

func sampleLink(code string) *models.ShortLink {
	userID := int64(1)
	return &models.ShortLink{
		ID:          10,
		ShortCode:   code,
		OriginalURL: "https://example.com",
		UserID:      &userID,
		CreatedAt:   time.Now(),
	}
}

func TestLinkService_Create(t *testing.T) {
	repo := &MockLinkRepository{}
	svc := newTestLinkService(repo, "abc1234")

	userID := int64(1)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.LinkCreate) bool {
		return c.ShortCode == "abc1234" && c.OriginalURL == "https://example.com"
	})).Return(sampleLink("abc1234"), nil)

	resp, err := svc.Create(context.Background(), CreateLinkRequest{
		OriginalURL: "https://example.com",
		UserID:      &userID,
	})
	require.NoError(t, err)

	assert.Equal(t, testBaseURL+"/abc1234", resp.ShortURL)
	assert.Equal(t, "https://example.com", resp.OriginalURL)
	repo.AssertExpectations(t)
}

func TestLinkService_Create_RetriesOnCollision(t *testing.T) {
	repo := &MockLinkRepository{}
	svc := newTestLinkService(repo, "taken01", "taken02", "fresh03")

	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.LinkCreate) bool {
		return c.ShortCode == "taken01"
	})).Return(nil, repository.ErrDuplicateShortCode).Once()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.LinkCreate) bool {
		return c.ShortCode == "taken02"
	})).Return(nil, repository.ErrDuplicateShortCode).Once()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.LinkCreate) bool {
		return c.ShortCode == "fresh03"
	})).Return(sampleLink("fresh03"), nil).Once()

	resp, err := svc.Create(context.Background(), CreateLinkRequest{OriginalURL: "https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, "fresh03", resp.ShortCode)
	repo.AssertExpectations(t)
}

func TestLinkService_Create_RetriesExhausted(t *testing.T) {
	repo := &MockLinkRepository{}
	svc := newTestLinkService(repo, "taken01")

	repo.On("Create", mock.Anything, mock.Anything).
		Return(nil, repository.ErrDuplicateShortCode).
		Times(maxGenerateAttempts)

	_, err := svc.Create(context.Background(), CreateLinkRequest{OriginalURL: "https://example.com"})
	assert.ErrorIs(t, err, models.ErrRetriesExhausted)
	repo.AssertExpectations(t)
}

func TestLinkService_Create_InvalidURL(t *testing.T) {
	repo := &MockLinkRepository{}
	svc := newTestLinkService(repo)

	for _, url := range []string{"", "not-a-url", "ftp://example.com"} {
		_, err := svc.Create(context.Background(), CreateLinkRequest{OriginalURL: url})
		assert.Error(t, err, "url %q", url)
	}
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLinkService_Create_SanitizerPolicy(t *testing.T) {
	repo := &MockLinkRepository{}
	svc := NewLinkService(repo, &fixedGenerator{codes: []string{"abc1234"}}, testBaseURL)

	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{"javascript scheme", "javascript:alert(1)", ErrDangerousURL},
		{"private address", "http://192.168.1.1/router", ErrPrivateIPURL},
		{"localhost", "http://localhost:8080/loop", ErrPrivateIPURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), CreateLinkRequest{OriginalURL: tt.url})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLinkService_CreateCustom(t *testing.T) {
	repo := &MockLinkRepository{}
	svc := newTestLinkService(repo)

	userID := int64(1)
	repo.On("Exists", mock.Anything, "my-brand").Return(false, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.LinkCreate) bool {
		return c.ShortCode == "my-brand"
	})).Return(sampleLink("my-brand"), nil)

	resp, err := svc.CreateCustom(context.Background(), CreateLinkRequest{
		OriginalURL: "https://example.com",
		CustomSlug:  "my-brand",
		UserID:      &userID,
	})
	require.NoError(t, err)

	assert.Equal(t, testBaseURL+"/my-brand", resp.ShortURL)
	repo.AssertExpectations(t)
}

func TestLinkService_CreateCustom_SlugValidation(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		wantErr error
	}{
		{"empty", "", models.ErrEmptySlug},
		{"too short", "ab", models.ErrInvalidSlug},
		{"bad characters", "bad slug!", models.ErrInvalidSlug},
		{"reserved word", "api", models.ErrReservedSlug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockLinkRepository{}
			svc := newTestLinkService(repo)

			_, err := svc.CreateCustom(context.Background(), CreateLinkRequest{
				OriginalURL: "https://example.com",
				CustomSlug:  tt.slug,
			})
			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestLinkService_CreateCustom_SlugTaken(t *testing.T) {
	repo := &MockLinkRepository{}
	svc := newTestLinkService(repo)

	repo.On("Exists", mock.Anything, "taken-slug").Return(true, nil)

	_, err := svc.CreateCustom(context.Background(), CreateLinkRequest{
		OriginalURL: "https://example.com",
		CustomSlug:  "taken-slug",
	})
	assert.ErrorIs(t, err, models.ErrSlugTaken)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLinkService_CreateCustom_RacedInsert(t *testing.T) {
	repo := &MockLinkRepository{}
	svc := newTestLinkService(repo)

	// Pre-check says free, but a concurrent request wins the insert
	repo.On("Exists", mock.Anything, "raced").Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil, repository.ErrDuplicateShortCode)

	_, err := svc.CreateCustom(context.Background(), CreateLinkRequest{
		OriginalURL: "https://example.com",
		CustomSlug:  "raced",
	})
	assert.ErrorIs(t, err, models.ErrSlugTaken)
}

func TestLinkService_ListUserLinks(t *testing.T) {
	repo := &MockLinkRepository{}
	svc := newTestLinkService(repo)

	userID := int64(7)
	repo.On("ListByUser", mock.Anything, userID).Return([]*models.ShortLink{
		{ShortCode: "newer11", OriginalURL: "https://example.com/a", Clicks: 5},
		{ShortCode: "older22", OriginalURL: "https://example.com/b", Clicks: 2},
	}, nil)

	infos, err := svc.ListUserLinks(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, infos, 2)
	assert.Equal(t, testBaseURL+"/newer11", infos[0].ShortURL)
	assert.Equal(t, int64(5), infos[0].Clicks)
	assert.Equal(t, "older22", infos[1].ShortCode)
}

func TestLinkService_ListUserLinks_Empty(t *testing.T) {
	repo := &MockLinkRepository{}
	svc := newTestLinkService(repo)

	repo.On("ListByUser", mock.Anything, int64(7)).Return([]*models.ShortLink{}, nil)

	infos, err := svc.ListUserLinks(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, infos)
	assert.NotNil(t, infos)
}
