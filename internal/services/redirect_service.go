package services

import (
	"context"

	"github.com/shortr/shortr/internal/metrics"
	"github.com/shortr/shortr/internal/repository"
)

// RedirectResult represents the result of a redirect lookup.
type RedirectResult struct {
	OriginalURL string
	Clicks      int64
}

// RedirectService defines the interface for redirect operations.
type RedirectService interface {
	Redirect(ctx context.Context, shortCode string) (*RedirectResult, error)
}

// RedirectServiceImpl implements RedirectService.
type RedirectServiceImpl struct {
	repo repository.LinkRepository
}

// NewRedirectService creates a new RedirectService instance.
func NewRedirectService(repo repository.LinkRepository) *RedirectServiceImpl {
	return &RedirectServiceImpl{repo: repo}
}

// Redirect resolves a short code to its original URL, counting the visit.
// The lookup and increment are one atomic repository operation.
func (s *RedirectServiceImpl) Redirect(ctx context.Context, shortCode string) (*RedirectResult, error) {
	link, err := s.repo.ResolveAndCount(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	metrics.RecordRedirect()

	return &RedirectResult{
		OriginalURL: link.OriginalURL,
		Clicks:      link.Clicks,
	}, nil
}
