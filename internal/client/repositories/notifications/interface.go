package notifications

import (
	"context"
	"time"

	"github.com/dmitrijs2005/sanes/internal/client/models"
)

// Repository stores cached notifications.
type Repository interface {
	// ReplaceAll swaps the cached inbox for items.
	ReplaceAll(ctx context.Context, items []models.Notification) error

	// Upsert inserts or updates a single notification by ID.
	Upsert(ctx context.Context, n *models.Notification) error

	// GetAll returns cached notifications, newest first.
	GetAll(ctx context.Context) ([]models.Notification, error)

	// MarkRead flags one notification as read. Unknown IDs are ignored.
	MarkRead(ctx context.Context, id int64, at time.Time) error

	// MarkAllRead flags every cached notification as read.
	MarkAllRead(ctx context.Context, at time.Time) error

	// CountUnread returns the number of unread cached notifications.
	CountUnread(ctx context.Context) (int, error)

	// Clear drops the cache, e.g. when the session ends.
	Clear(ctx context.Context) error
}
