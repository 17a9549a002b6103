package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bgf/dashboard-api/internal/api/metrics"
	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
	"github.com/bgf/dashboard-api/internal/pkg/ids"
)

const defaultCategory = "general"

// Publisher pushes a stored notification to realtime subscribers.
type Publisher interface {
	Publish(ctx context.Context, n *domain.Notification) error
}

// EmailQueue accepts companion emails for asynchronous delivery.
type EmailQueue interface {
	Enqueue(msg ports.EmailMessage) bool
}

// NotificationService stores notifications and fans them out. Fan-out
// failures are logged and never returned to the producer.
type NotificationService struct {
	repo      ports.NotificationRepository
	publisher Publisher
	emails    EmailQueue
	now       func() time.Time
	log       zerolog.Logger
}

// NewNotificationService wires the notification subsystem. publisher and
// emails may be nil.
func NewNotificationService(repo ports.NotificationRepository, publisher Publisher, emails EmailQueue, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		emails:    emails,
		now:       time.Now,
		log:       log,
	}
}

var _ ports.NotificationService = (*NotificationService)(nil)

func (s *NotificationService) CreateNotification(ctx context.Context, in ports.CreateNotificationInput) (*domain.Notification, error) {
	userID := strings.TrimSpace(in.UserID)
	title := strings.TrimSpace(in.Title)
	if userID == "" || title == "" || strings.TrimSpace(in.Message) == "" {
		return nil, fmt.Errorf("create notification: %w: user_id, title and message are required", domain.ErrInvalidInput)
	}
	typ := in.Type
	if typ == "" {
		typ = domain.NotificationInfo
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("create notification: %w: unknown type %q", domain.ErrInvalidInput, typ)
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = defaultCategory
	}

	now := s.now().UTC()
	n := &domain.Notification{
		ID:        ids.New(now),
		UserID:    userID,
		Title:     title,
		Message:   in.Message,
		Type:      typ,
		Category:  category,
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	metrics.NotificationsCreatedTotal.WithLabelValues(category).Inc()

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, n); err != nil {
			metrics.FanoutErrorsTotal.WithLabelValues("realtime").Inc()
			s.log.Warn().Err(err).Str("notification_id", n.ID).Msg("realtime publish failed")
		}
	}
	if in.Email != "" && s.emails != nil {
		ok := s.emails.Enqueue(ports.EmailMessage{
			UserID:  userID,
			To:      in.Email,
			Subject: title,
			Body:    in.Message,
		})
		if !ok {
			metrics.FanoutErrorsTotal.WithLabelValues("email").Inc()
			s.log.Warn().Str("notification_id", n.ID).Msg("email queue full, companion email dropped")
		}
	}

	return n, nil
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page, limit int) (*ports.NotificationPage, error) {
	page, limit = pageParams(page, limit)
	items, total, err := s.repo.ListByUser(ctx, userID, unreadOnly, page, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ports.NotificationPage{Items: items, Total: total, UnreadCount: unread, Page: page, Limit: limit}, nil
}

// MarkAsRead marks one of userID's notifications as read.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, id, userID, s.now().UTC())
}

// MarkAllAsRead marks every unread notification of userID and returns how
// many changed.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID, s.now().UTC())
}

func (s *NotificationService) DeleteNotification(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, id, userID)
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
