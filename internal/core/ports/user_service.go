package ports

import (
	"context"

	"github.com/bgf/dashboard-api/internal/core/domain"
)

// UpdateUserInput carries an admin edit. Nil fields are left as is.
type UpdateUserInput struct {
	FullName *string
	Role     *domain.Role
	Status   *domain.UserStatus
}

// ListUsersResult is a page of users.
type ListUsersResult struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UserService defines account administration use cases.
type UserService interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, filter ListUsersFilter) (*ListUsersResult, error)
	Update(ctx context.Context, actor domain.Identity, id string, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, actor domain.Identity, id string) error
}

// ActivityPage is a page of the activity log.
type ActivityPage struct {
	Items []domain.ActivityLog
	Total int64
	Page  int
	Limit int
}

// ReportService serves the dashboard aggregate views.
type ReportService interface {
	Summary(ctx context.Context) (*RequestSummary, error)
	Activity(ctx context.Context, page, limit int) (*ActivityPage, error)
}
