package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/remindly/bot/domain"
	"github.com/remindly/bot/repository"
)

type linkRepository struct {
	pool *pgxpool.Pool
}

// NewLinkRepository returns a Postgres-backed implementation of LinkRepository.
func NewLinkRepository(pool *pgxpool.Pool) repository.LinkRepository {
	return &linkRepository{pool: pool}
}

func (r *linkRepository) Create(ctx context.Context, ownerID int64, url, title string) (*domain.Link, error) {
	if strings.TrimSpace(url) == "" {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO links (owner_id, url, title)
	VALUES ($1, $2, $3)
	RETURNING id, created_at
	`

	link := &domain.Link{
		OwnerID: ownerID,
		URL:     url,
		Title:   strings.TrimSpace(title),
	}

	if err := r.pool.QueryRow(ctx, query, link.OwnerID, link.URL, link.Title).
		Scan(&link.ID, &link.CreatedAt); err != nil {
		return nil, err
	}

	return link, nil
}

func (r *linkRepository) GetByID(ctx context.Context, id int64) (*domain.Link, error) {
	const query = `
	SELECT id, owner_id, url, title, summary, read, created_at, read_at
	FROM links
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanLink(row)
}

func (r *linkRepository) ListUnread(ctx context.Context, ownerID int64, limit int) ([]domain.Link, error) {
	const query = `
	SELECT id, owner_id, url, title, summary, read, created_at, read_at
	FROM links
	WHERE owner_id = $1 AND NOT read
	ORDER BY created_at DESC
	LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, ownerID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *link)
	}
	return links, rows.Err()
}

func (r *linkRepository) RandomUnread(ctx context.Context, ownerID int64) (*domain.Link, error) {
	const query = `
	SELECT id, owner_id, url, title, summary, read, created_at, read_at
	FROM links
	WHERE owner_id = $1 AND NOT read
	ORDER BY random()
	LIMIT 1
	`
	row := r.pool.QueryRow(ctx, query, ownerID)
	return scanLink(row)
}

func (r *linkRepository) UnreadCount(ctx context.Context, ownerID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM links WHERE owner_id = $1 AND NOT read`
	var count int
	if err := r.pool.QueryRow(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *linkRepository) MarkRead(ctx context.Context, id int64) error {
	const query = `UPDATE links SET read = TRUE, read_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLinkNotFound
	}
	return nil
}

func (r *linkRepository) UpdateTitle(ctx context.Context, id int64, title string) error {
	const query = `UPDATE links SET title = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, title)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLinkNotFound
	}
	return nil
}

func (r *linkRepository) UpdateSummary(ctx context.Context, id int64, summary string) error {
	const query = `UPDATE links SET summary = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, summary)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLinkNotFound
	}
	return nil
}

func scanLink(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Link, error) {
	var link domain.Link
	var readAt *time.Time

	if err := row.Scan(
		&link.ID,
		&link.OwnerID,
		&link.URL,
		&link.Title,
		&link.Summary,
		&link.Read,
		&link.CreatedAt,
		&readAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLinkNotFound
		}
		return nil, err
	}

	link.ReadAt = readAt
	return &link, nil
}
