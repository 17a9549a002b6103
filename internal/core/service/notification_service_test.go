package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
)

func newNotificationSvc() (*NotificationService, *stubNotificationRepo, *stubPublisher, *stubEmailQueue) {
	repo := &stubNotificationRepo{}
	pub := &stubPublisher{}
	emails := &stubEmailQueue{}
	svc := NewNotificationService(repo, pub, emails, zerolog.Nop())
	svc.now = newFakeClock().Now
	return svc, repo, pub, emails
}

func TestNotificationService_Create_Defaults(t *testing.T) {
	svc, repo, pub, emails := newNotificationSvc()

	n, err := svc.CreateNotification(context.Background(), ports.CreateNotificationInput{
		UserID: "user_1", Title: "Hello", Message: "Welcome aboard",
	})
	if err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	if n.Type != domain.NotificationInfo || n.Category != "general" || n.IsRead {
		t.Errorf("unexpected defaults: %+v", n)
	}
	if len(repo.items) != 1 || len(pub.published) != 1 || pub.published[0] != n.ID {
		t.Errorf("expected stored and published once")
	}
	if len(emails.queued) != 0 {
		t.Errorf("expected no email without an address")
	}
}

func TestNotificationService_Create_Email(t *testing.T) {
	svc, _, _, emails := newNotificationSvc()

	_, err := svc.CreateNotification(context.Background(), ports.CreateNotificationInput{
		UserID: "user_1", Title: "Approved", Message: "Your request was approved",
		Type: domain.NotificationSuccess, Email: "bea@example.com",
	})
	if err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	if len(emails.queued) != 1 || emails.queued[0].To != "bea@example.com" || emails.queued[0].UserID != "user_1" {
		t.Fatalf("unexpected emails: %+v", emails.queued)
	}
}

func TestNotificationService_Create_Validation(t *testing.T) {
	svc, repo, _, _ := newNotificationSvc()

	cases := map[string]ports.CreateNotificationInput{
		"no user":    {Title: "t", Message: "m"},
		"no title":   {UserID: "u", Message: "m"},
		"no message": {UserID: "u", Title: "t"},
		"bad type":   {UserID: "u", Title: "t", Message: "m", Type: "urgent"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.CreateNotification(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
	if len(repo.items) != 0 {
		t.Errorf("expected nothing stored")
	}
}

func TestNotificationService_FanoutFailuresAreNonFatal(t *testing.T) {
	svc, repo, pub, emails := newNotificationSvc()
	pub.err = errors.New("redis down")
	emails.full = true

	if _, err := svc.CreateNotification(context.Background(), ports.CreateNotificationInput{
		UserID: "user_1", Title: "t", Message: "m", Email: "bea@example.com",
	}); err != nil {
		t.Fatalf("expected fan-out failures to be swallowed, got %v", err)
	}
	if len(repo.items) != 1 {
		t.Errorf("expected notification stored")
	}
}

func TestNotificationService_StoreFailureIsReturned(t *testing.T) {
	svc, repo, pub, _ := newNotificationSvc()
	repo.createErr = errStore

	if _, err := svc.CreateNotification(context.Background(), ports.CreateNotificationInput{UserID: "u", Title: "t", Message: "m"}); !errors.Is(err, errStore) {
		t.Fatalf("expected store error, got %v", err)
	}
	if len(pub.published) != 0 {
		t.Errorf("expected nothing published")
	}
}

func TestNotificationService_ReadFlow(t *testing.T) {
	svc, _, _, _ := newNotificationSvc()
	ctx := context.Background()

	a, _ := svc.CreateNotification(ctx, ports.CreateNotificationInput{UserID: "user_1", Title: "a", Message: "a"})
	_, _ = svc.CreateNotification(ctx, ports.CreateNotificationInput{UserID: "user_1", Title: "b", Message: "b"})
	c, _ := svc.CreateNotification(ctx, ports.CreateNotificationInput{UserID: "user_2", Title: "c", Message: "c"})

	if n, _ := svc.GetUnreadCount(ctx, "user_1"); n != 2 {
		t.Fatalf("expected 2 unread, got %d", n)
	}
	if err := svc.MarkAsRead(ctx, "user_1", c.ID); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("expected other users' notifications to be invisible, got %v", err)
	}
	if err := svc.MarkAsRead(ctx, "user_1", a.ID); err != nil {
		t.Fatalf("MarkAsRead: %v", err)
	}

	page, err := svc.List(ctx, "user_1", true, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 1 || page.UnreadCount != 1 || page.Page != 1 || page.Limit != 20 {
		t.Fatalf("unexpected page: %+v", page)
	}

	if n, _ := svc.MarkAllAsRead(ctx, "user_1"); n != 1 {
		t.Fatalf("expected 1 marked, got %d", n)
	}
	if n, _ := svc.GetUnreadCount(ctx, "user_1"); n != 0 {
		t.Fatalf("expected 0 unread, got %d", n)
	}

	if err := svc.DeleteNotification(ctx, "user_1", c.ID); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("expected delete of foreign notification to fail, got %v", err)
	}
	if err := svc.DeleteNotification(ctx, "user_2", c.ID); err != nil {
		t.Fatalf("DeleteNotification: %v", err)
	}
}
