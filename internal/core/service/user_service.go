package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
)

// UserService implements account administration.
type UserService struct {
	repo     ports.UserRepository
	activity activityRecorder
	now      func() time.Time
	log      zerolog.Logger
}

func NewUserService(repo ports.UserRepository, activityRepo ports.ActivityRepository, log zerolog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		activity: activityRecorder{repo: activityRepo, log: log},
		now:      time.Now,
		log:      log,
	}
}

var _ ports.UserService = (*UserService)(nil)

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, filter ports.ListUsersFilter) (*ports.ListUsersResult, error) {
	filter.Page, filter.Limit = pageParams(filter.Page, filter.Limit)
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, fmt.Errorf("list users: %w: unknown role %q", domain.ErrInvalidInput, filter.Role)
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.ListUsersResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

// Update changes a user's name, role or status. Admins cannot lock
// themselves out by demoting or deactivating their own account.
func (s *UserService) Update(ctx context.Context, actor domain.Identity, id string, in ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	self := actor != nil && actor.IdentityID() == user.ID

	var changes []string
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return nil, fmt.Errorf("update user: %w: full_name is required", domain.ErrInvalidInput)
		}
		user.FullName = name
		changes = append(changes, "full_name")
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, fmt.Errorf("update user: %w: unknown role %q", domain.ErrInvalidInput, *in.Role)
		}
		if self && *in.Role != user.Role {
			return nil, fmt.Errorf("update user: %w: cannot change own role", domain.ErrForbidden)
		}
		user.Role = *in.Role
		changes = append(changes, "role="+string(*in.Role))
	}
	if in.Status != nil {
		if *in.Status != domain.UserActive && *in.Status != domain.UserInactive {
			return nil, fmt.Errorf("update user: %w: unknown status %q", domain.ErrInvalidInput, *in.Status)
		}
		if self && *in.Status == domain.UserInactive {
			return nil, fmt.Errorf("update user: %w: cannot deactivate own account", domain.ErrForbidden)
		}
		user.Status = *in.Status
		changes = append(changes, "status="+string(*in.Status))
	}

	user.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Strs("changes", changes).Msg("user updated")
	s.activity.record(ctx, actor, "update", "user", user.ID, strings.Join(changes, ", "), user.UpdatedAt)
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, actor domain.Identity, id string) error {
	if actor != nil && actor.IdentityID() == id {
		return fmt.Errorf("delete user: %w: cannot delete own account", domain.ErrForbidden)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.activity.record(ctx, actor, "delete", "user", id, "", s.now().UTC())
	return nil
}
