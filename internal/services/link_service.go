package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shortr/shortr/internal/idgen"
	"github.com/shortr/shortr/internal/metrics"
	"github.com/shortr/shortr/internal/models"
	"github.com/shortr/shortr/internal/repository"
	"github.com/shortr/shortr/internal/security"
)

// maxGenerateAttempts bounds the collision retry loop for auto-generated codes.
const maxGenerateAttempts = 3

// Security-related errors for URL validation.
var (
	ErrDangerousURL   = errors.New("URL contains dangerous scheme")
	ErrPrivateIPURL   = errors.New("private IP addresses are not allowed")
	ErrBlockedHostURL = errors.New("host is blocked")
	ErrURLTooLong     = errors.New("URL exceeds maximum length")
)

// CreateLinkRequest represents the input for creating a short link.
type CreateLinkRequest struct {
	OriginalURL string
	CustomSlug  string
	UserID      *int64
}

// CreateLinkResponse represents the result of creating a short link.
type CreateLinkResponse struct {
	ShortURL    string
	ShortCode   string
	OriginalURL string
	UserID      *int64
	CreatedAt   time.Time
}

// LinkInfo is one entry in a user's link listing.
type LinkInfo struct {
	ShortURL    string
	ShortCode   string
	OriginalURL string
	Clicks      int64
	CreatedAt   time.Time
}

// LinkService defines the interface for short link operations.
type LinkService interface {
	Create(ctx context.Context, req CreateLinkRequest) (*CreateLinkResponse, error)
	CreateCustom(ctx context.Context, req CreateLinkRequest) (*CreateLinkResponse, error)
	ListUserLinks(ctx context.Context, userID int64) ([]LinkInfo, error)
}

// LinkServiceImpl implements LinkService.
type LinkServiceImpl struct {
	repo      repository.LinkRepository
	generator idgen.Generator
	sanitizer *security.Sanitizer
	baseURL   string
}

// NewLinkService creates a new LinkService instance.
func NewLinkService(repo repository.LinkRepository, gen idgen.Generator, baseURL string) *LinkServiceImpl {
	return &LinkServiceImpl{
		repo:      repo,
		generator: gen,
		sanitizer: security.NewSanitizer(security.DefaultConfig()),
		baseURL:   baseURL,
	}
}

// NewLinkServiceWithSanitizer creates a LinkService with a custom sanitizer.
func NewLinkServiceWithSanitizer(repo repository.LinkRepository, gen idgen.Generator, sanitizer *security.Sanitizer, baseURL string) *LinkServiceImpl {
	return &LinkServiceImpl{
		repo:      repo,
		generator: gen,
		sanitizer: sanitizer,
		baseURL:   baseURL,
	}
}

// Create creates a short link with an auto-generated code. Each attempt
// inserts directly; the unique constraint is the collision signal, so
// there is no check-then-insert window.
func (s *LinkServiceImpl) Create(ctx context.Context, req CreateLinkRequest) (*CreateLinkResponse, error) {
	if err := s.validateURL(req.OriginalURL); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code, err := s.generator.Generate()
		if err != nil {
			return nil, err
		}

		link, err := s.repo.Create(ctx, &models.LinkCreate{
			OriginalURL: req.OriginalURL,
			ShortCode:   code,
			UserID:      req.UserID,
		})
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateShortCode) {
				continue
			}
			return nil, err
		}

		metrics.RecordLinkCreated()
		return s.toResponse(link), nil
	}

	return nil, models.ErrRetriesExhausted
}

// CreateCustom creates a short link with a user-chosen slug. The existence
// pre-check is a fast answer only; the insert's unique constraint is the
// authoritative signal under concurrent identical requests.
func (s *LinkServiceImpl) CreateCustom(ctx context.Context, req CreateLinkRequest) (*CreateLinkResponse, error) {
	if err := s.validateURL(req.OriginalURL); err != nil {
		return nil, err
	}

	if err := models.ValidateSlug(req.CustomSlug); err != nil {
		return nil, err
	}

	taken, err := s.repo.Exists(ctx, req.CustomSlug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.ErrSlugTaken
	}

	link, err := s.repo.Create(ctx, &models.LinkCreate{
		OriginalURL: req.OriginalURL,
		ShortCode:   req.CustomSlug,
		UserID:      req.UserID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateShortCode) {
			return nil, models.ErrSlugTaken
		}
		return nil, err
	}

	metrics.RecordLinkCreated()
	return s.toResponse(link), nil
}

// ListUserLinks returns a user's links, newest first, with fully
// qualified short URLs.
func (s *LinkServiceImpl) ListUserLinks(ctx context.Context, userID int64) ([]LinkInfo, error) {
	links, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	infos := make([]LinkInfo, 0, len(links))
	for _, link := range links {
		infos = append(infos, LinkInfo{
			ShortURL:    s.qualify(link.ShortCode),
			ShortCode:   link.ShortCode,
			OriginalURL: link.OriginalURL,
			Clicks:      link.Clicks,
			CreatedAt:   link.CreatedAt,
		})
	}

	return infos, nil
}

// validateURL applies format validation and the sanitizer policy.
func (s *LinkServiceImpl) validateURL(rawURL string) error {
	if rawURL == "" {
		return models.ErrEmptyURL
	}

	if s.sanitizer != nil {
		if err := s.sanitizer.Validate(rawURL); err != nil {
			return mapSecurityError(err)
		}
	}

	if !models.IsValidURL(rawURL) {
		return models.ErrInvalidURL
	}

	return nil
}

func (s *LinkServiceImpl) toResponse(link *models.ShortLink) *CreateLinkResponse {
	return &CreateLinkResponse{
		ShortURL:    s.qualify(link.ShortCode),
		ShortCode:   link.ShortCode,
		OriginalURL: link.OriginalURL,
		UserID:      link.UserID,
		CreatedAt:   link.CreatedAt,
	}
}

func (s *LinkServiceImpl) qualify(shortCode string) string {
	return fmt.Sprintf("%s/%s", s.baseURL, shortCode)
}

// mapSecurityError maps security package errors to service errors.
func mapSecurityError(err error) error {
	switch {
	case errors.Is(err, security.ErrDangerousScheme):
		return ErrDangerousURL
	case errors.Is(err, security.ErrPrivateIP):
		return ErrPrivateIPURL
	case errors.Is(err, security.ErrBlockedHost):
		return ErrBlockedHostURL
	case errors.Is(err, security.ErrURLTooLong):
		return ErrURLTooLong
	default:
		return models.ErrInvalidURL
	}
}
