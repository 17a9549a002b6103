package ports

import (
	"context"

	"github.com/bgf/dashboard-api/internal/core/domain"
)

// CreateNotificationInput is the producer side of the notification contract.
type CreateNotificationInput struct {
	UserID   string
	Title    string
	Message  string
	Type     domain.NotificationType
	Category string
	// Email, when set, also sends a companion email.
	Email string
}

// NotificationPage is a page of a user's notifications.
type NotificationPage struct {
	Items       []domain.Notification
	Total       int64
	UnreadCount int64
	Page        int
	Limit       int
}

// NotificationService is the notification contract consumed by the workflow
// and exposed over HTTP.
type NotificationService interface {
	CreateNotification(ctx context.Context, in CreateNotificationInput) (*domain.Notification, error)
	List(ctx context.Context, userID string, unreadOnly bool, page, limit int) (*NotificationPage, error)
	MarkAsRead(ctx context.Context, userID, id string) error
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	DeleteNotification(ctx context.Context, userID, id string) error
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
}
