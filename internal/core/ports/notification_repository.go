package ports

import (
	"context"
	"time"

	"github.com/bgf/dashboard-api/internal/core/domain"
)

// NotificationRepository persists in-app notifications. Mutations are scoped
// to the owning user id.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, page, limit int) ([]domain.Notification, int64, error)
	MarkRead(ctx context.Context, id, userID string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
	Delete(ctx context.Context, id, userID string) error
	CountUnread(ctx context.Context, userID string) (int64, error)
}
