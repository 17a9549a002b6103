package ports

import (
	"context"
	"net/http"
	"time"

	"github.com/bgf/dashboard-api/internal/core/domain"
)

// RegisterInput carries a self-registration.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

// AuthService handles email/password accounts.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// ParseUserToken decodes a session token into a regular identity.
	ParseUserToken(token string) (domain.RegularUser, error)
}

// StaffToken is a freshly minted staff token.
type StaffToken struct {
	Token     string
	Staff     domain.StaffUser
	ExpiresAt time.Time
}

// StaffAuthService exchanges access codes for signed staff tokens.
type StaffAuthService interface {
	IssueStaffToken(ctx context.Context, fullName, accessCode string) (*StaffToken, error)
	VerifyStaffToken(token string) (domain.StaffUser, error)
	// TokenFromRequest picks the staff token from the cookie, falling back to
	// an Authorization: Bearer header.
	TokenFromRequest(r *http.Request) string
}
