package repository

import (
	"context"
	"errors"

	"github.com/shortr/shortr/internal/cache"
	"github.com/shortr/shortr/internal/metrics"
	"github.com/shortr/shortr/internal/models"
)

// CachedLinkRepository wraps a LinkRepository with a Redis read-through
// cache. Lookups and existence checks are served from cache when possible;
// the click counter always goes to the database, with the cache entry
// refreshed afterwards as a best effort.
type CachedLinkRepository struct {
	repo  LinkRepository
	cache cache.LinkCacher
}

// NewCachedLinkRepository creates a new cached link repository.
func NewCachedLinkRepository(repo LinkRepository, linkCache cache.LinkCacher) *CachedLinkRepository {
	return &CachedLinkRepository{
		repo:  repo,
		cache: linkCache,
	}
}

// Create stores a new link in the database and populates the cache.
func (c *CachedLinkRepository) Create(ctx context.Context, create *models.LinkCreate) (*models.ShortLink, error) {
	link, err := c.repo.Create(ctx, create)
	if err != nil {
		return nil, err
	}

	// Cache errors are not critical
	_ = c.cache.Set(ctx, toCached(link))

	return link, nil
}

// GetByShortCode retrieves a link, checking cache first.
func (c *CachedLinkRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.ShortLink, error) {
	cached, err := c.cache.Get(ctx, shortCode)
	if err == nil {
		metrics.RecordCacheHit()
		return fromCached(cached), nil
	}
	if errors.Is(err, cache.ErrCacheMiss) {
		metrics.RecordCacheMiss()
	}

	link, err := c.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	_ = c.cache.Set(ctx, toCached(link))

	return link, nil
}

// Exists checks if a short code exists, checking cache first. A cache hit
// is conclusive for existence; a miss falls through to the database.
func (c *CachedLinkRepository) Exists(ctx context.Context, shortCode string) (bool, error) {
	exists, err := c.cache.Exists(ctx, shortCode)
	if err == nil {
		if exists {
			metrics.RecordCacheHit()
			return true, nil
		}
		metrics.RecordCacheMiss()
	}

	return c.repo.Exists(ctx, shortCode)
}

// ListByUser is not cached; listings always reflect current click counts.
func (c *CachedLinkRepository) ListByUser(ctx context.Context, userID int64) ([]*models.ShortLink, error) {
	return c.repo.ListByUser(ctx, userID)
}

// ResolveAndCount delegates to the database for the atomic increment and
// refreshes the cache entry with the updated record.
func (c *CachedLinkRepository) ResolveAndCount(ctx context.Context, shortCode string) (*models.ShortLink, error) {
	link, err := c.repo.ResolveAndCount(ctx, shortCode)
	if err != nil {
		if errors.Is(err, models.ErrLinkNotFound) {
			// Drop any stale cache entry for a code the database no longer has
			_ = c.cache.Delete(ctx, shortCode)
		}
		return nil, err
	}

	_ = c.cache.Set(ctx, toCached(link))

	return link, nil
}

// HealthCheck checks both cache and database health.
func (c *CachedLinkRepository) HealthCheck(ctx context.Context) error {
	if err := c.cache.Ping(ctx); err != nil {
		return err
	}
	return c.repo.HealthCheck(ctx)
}

func toCached(link *models.ShortLink) *cache.CachedLink {
	return &cache.CachedLink{
		ID:          link.ID,
		ShortCode:   link.ShortCode,
		OriginalURL: link.OriginalURL,
		UserID:      link.UserID,
		Clicks:      link.Clicks,
		CreatedAt:   link.CreatedAt,
	}
}

func fromCached(cached *cache.CachedLink) *models.ShortLink {
	return &models.ShortLink{
		ID:          cached.ID,
		ShortCode:   cached.ShortCode,
		OriginalURL: cached.OriginalURL,
		UserID:      cached.UserID,
		Clicks:      cached.Clicks,
		CreatedAt:   cached.CreatedAt,
	}
}
