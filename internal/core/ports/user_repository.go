package ports

import (
	"context"

	"github.com/bgf/dashboard-api/internal/core/domain"
)

// ListUsersFilter carries the admin user list query.
type ListUsersFilter struct {
	Role   domain.Role       // optional
	Status domain.UserStatus // optional
	Search string            // optional: partial match on email or full_name
	Page   int               // 1-based
	Limit  int
}

// UserRepository defines persistence for regular accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}

// AccessCodeRepository is the persistent staff access code table.
type AccessCodeRepository interface {
	List(ctx context.Context) ([]domain.StaffAccessCode, error)
	Upsert(ctx context.Context, code domain.StaffAccessCode) error
}
