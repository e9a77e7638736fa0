package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shortr/shortr/internal/database"
	"github.com/shortr/shortr/internal/models"
)

// ErrDuplicateShortCode is returned when an insert hits the unique
// constraint on short_code. The link service retries auto-generated codes
// on this error and maps it to a conflict for custom slugs.
var ErrDuplicateShortCode = errors.New("short code already exists")

// LinkRepository defines the interface for short link persistence operations.
type LinkRepository interface {
	// Create stores a new short link and returns the created entity.
	Create(ctx context.Context, link *models.LinkCreate) (*models.ShortLink, error)

	// GetByShortCode retrieves a link by its short code.
	GetByShortCode(ctx context.Context, shortCode string) (*models.ShortLink, error)

	// Exists checks if a short code already exists.
	Exists(ctx context.Context, shortCode string) (bool, error)

	// ListByUser returns all links owned by a user, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*models.ShortLink, error)

	// ResolveAndCount atomically increments the click counter and returns
	// the updated link in a single statement.
	ResolveAndCount(ctx context.Context, shortCode string) (*models.ShortLink, error)

	// HealthCheck verifies the repository is healthy.
	HealthCheck(ctx context.Context) error
}

// PostgresLinkRepository implements LinkRepository using PostgreSQL.
type PostgresLinkRepository struct {
	pool *database.Pool
}

// NewPostgresLinkRepository creates a new PostgreSQL-backed link repository.
func NewPostgresLinkRepository(pool *database.Pool) *PostgresLinkRepository {
	return &PostgresLinkRepository{pool: pool}
}

// Create stores a new short link. A unique violation on short_code is
// reported as ErrDuplicateShortCode so callers can retry or conflict.
func (r *PostgresLinkRepository) Create(ctx context.Context, create *models.LinkCreate) (*models.ShortLink, error) {
	if err := create.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO short_links (short_code, original_url, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, short_code, original_url, user_id, clicks, created_at
	`

	var link models.ShortLink
	err := r.pool.QueryRow(ctx, query, create.ShortCode, create.OriginalURL, create.UserID).Scan(
		&link.ID,
		&link.ShortCode,
		&link.OriginalURL,
		&link.UserID,
		&link.Clicks,
		&link.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateShortCode
		}
		return nil, fmt.Errorf("failed to create short link: %w", err)
	}

	return &link, nil
}

// GetByShortCode retrieves a link by its short code.
func (r *PostgresLinkRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.ShortLink, error) {
	query := `
		SELECT id, short_code, original_url, user_id, clicks, created_at
		FROM short_links
		WHERE short_code = $1
	`

	var link models.ShortLink
	err := r.pool.QueryRow(ctx, query, shortCode).Scan(
		&link.ID,
		&link.ShortCode,
		&link.OriginalURL,
		&link.UserID,
		&link.Clicks,
		&link.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get short link: %w", err)
	}

	return &link, nil
}

// Exists checks if a short code already exists.
func (r *PostgresLinkRepository) Exists(ctx context.Context, shortCode string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM short_links WHERE short_code = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, shortCode).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}

	return exists, nil
}

// ListByUser returns all links owned by a user, newest first.
func (r *PostgresLinkRepository) ListByUser(ctx context.Context, userID int64) ([]*models.ShortLink, error) {
	query := `
		SELECT id, short_code, original_url, user_id, clicks, created_at
		FROM short_links
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list short links: %w", err)
	}
	defer rows.Close()

	var links []*models.ShortLink
	for rows.Next() {
		var link models.ShortLink
		if err := rows.Scan(
			&link.ID,
			&link.ShortCode,
			&link.OriginalURL,
			&link.UserID,
			&link.Clicks,
			&link.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan short link: %w", err)
		}
		links = append(links, &link)
	}

	return links, rows.Err()
}

// ResolveAndCount atomically increments the click counter and returns the
// updated link. One statement, so concurrent visits cannot lose updates.
func (r *PostgresLinkRepository) ResolveAndCount(ctx context.Context, shortCode string) (*models.ShortLink, error) {
	query := `
		UPDATE short_links
		SET clicks = clicks + 1
		WHERE short_code = $1
		RETURNING id, short_code, original_url, user_id, clicks, created_at
	`

	var link models.ShortLink
	err := r.pool.QueryRow(ctx, query, shortCode).Scan(
		&link.ID,
		&link.ShortCode,
		&link.OriginalURL,
		&link.UserID,
		&link.Clicks,
		&link.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to resolve short link: %w", err)
	}

	return &link, nil
}

// HealthCheck verifies the database connection is healthy.
func (r *PostgresLinkRepository) HealthCheck(ctx context.Context) error {
	return r.pool.HealthCheck(ctx)
}
