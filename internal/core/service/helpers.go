package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
	"github.com/bgf/dashboard-api/internal/pkg/ids"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// Notifier is the producer side of the notification contract.
type Notifier interface {
	CreateNotification(ctx context.Context, in ports.CreateNotificationInput) (*domain.Notification, error)
}

// pageParams applies defaults and the limit cap.
func pageParams(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// canView reports whether caller may see req. Staff see every request;
// everyone else only their own.
func canView(caller domain.Identity, req *domain.Request) bool {
	if caller == nil {
		return false
	}
	if caller.IdentityRole().IsStaff() {
		return true
	}
	return caller.IdentityID() == req.RequesterID
}

// nextHistoryTime returns a millisecond timestamp strictly after the latest
// history entry of the request.
func nextHistoryTime(ctx context.Context, repo ports.WorkflowRepository, requestID string, now time.Time) (time.Time, error) {
	at := now.UTC().Truncate(time.Millisecond)
	last, err := repo.LatestHistory(ctx, requestID)
	if err != nil {
		return time.Time{}, fmt.Errorf("latest history: %w", err)
	}
	if last != nil && !at.After(last.CreatedAt) {
		at = last.CreatedAt.UTC().Truncate(time.Millisecond).Add(time.Millisecond)
	}
	return at, nil
}

// appendHistory stamps entry with an id and appends it.
func appendHistory(ctx context.Context, repo ports.WorkflowRepository, entry *domain.HistoryEntry) error {
	entry.ID = ids.New(entry.CreatedAt)
	if err := repo.AppendHistory(ctx, entry); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// activityRecorder writes activity log entries. Failures are logged only.
type activityRecorder struct {
	repo ports.ActivityRepository
	log  zerolog.Logger
}

func (a activityRecorder) record(ctx context.Context, actor domain.Identity, action, entity, entityID, details string, at time.Time) {
	if a.repo == nil {
		return
	}
	entry := &domain.ActivityLog{
		ID:        ids.New(at),
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   details,
		CreatedAt: at,
	}
	if actor != nil {
		entry.ActorID = actor.IdentityID()
		entry.ActorName = actor.DisplayName()
	}
	if err := a.repo.Insert(ctx, entry); err != nil {
		a.log.Warn().Err(err).Str("action", action).Str("entity_id", entityID).Msg("failed to record activity")
	}
}
