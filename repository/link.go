package repository

import (
	"context"

	"github.com/remindly/bot/domain"
)

type LinkRepository interface {
	// Create persists a new unread link. URL is the only required field.
	Create(ctx context.Context, ownerID int64, url, title string) (*domain.Link, error)
	GetByID(ctx context.Context, id int64) (*domain.Link, error)
	// ListUnread returns unread links for the owner, newest first.
	// limit <= 0 means no limit.
	ListUnread(ctx context.Context, ownerID int64, limit int) ([]domain.Link, error)
	// RandomUnread picks one unread link at random, or ErrLinkNotFound.
	RandomUnread(ctx context.Context, ownerID int64) (*domain.Link, error)
	UnreadCount(ctx context.Context, ownerID int64) (int, error)
	// MarkRead flips the read flag and stamps read_at.
	MarkRead(ctx context.Context, id int64) error
	UpdateTitle(ctx context.Context, id int64, title string) error
	UpdateSummary(ctx context.Context, id int64, summary string) error
}
