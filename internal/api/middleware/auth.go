package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bgf/dashboard-api/internal/core/domain"
)

// IdentityKey is the echo context key holding the caller's domain.Identity.
const IdentityKey = "identity"

// StaffVerifier validates staff tokens.
type StaffVerifier interface {
	CookieName() string
	VerifyStaffToken(token string) (domain.StaffUser, error)
}

// UserTokenParser validates regular session tokens.
type UserTokenParser interface {
	ParseUserToken(token string) (domain.RegularUser, error)
}

// Authenticate resolves the caller and stores it under IdentityKey. A staff
// cookie wins over the Authorization header; a bearer token is tried as a
// user token first and as a staff token second.
func Authenticate(staff StaffVerifier, users UserTokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := resolve(c, staff, users)
			if err != nil {
				return err
			}
			c.Set(IdentityKey, id)
			return next(c)
		}
	}
}

// Identify is Authenticate for routes that also serve anonymous callers:
// failures leave the context without an identity.
func Identify(staff StaffVerifier, users UserTokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id, err := resolve(c, staff, users); err == nil {
				c.Set(IdentityKey, id)
			}
			return next(c)
		}
	}
}

// QueryToken copies ?token= into the Authorization header. Browsers cannot
// set headers on websocket upgrades.
func QueryToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if tok := c.QueryParam("token"); tok != "" && req.Header.Get(echo.HeaderAuthorization) == "" {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
			}
			return next(c)
		}
	}
}

// IdentityFrom returns the identity set by Authenticate or Identify.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(IdentityKey).(domain.Identity)
	return id, ok && id != nil
}

func resolve(c echo.Context, staff StaffVerifier, users UserTokenParser) (domain.Identity, error) {
	if cookie, err := c.Cookie(staff.CookieName()); err == nil && cookie.Value != "" {
		s, err := staff.VerifyStaffToken(cookie.Value)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	tok := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
	if tok == "" {
		return nil, domain.ErrTokenMissing
	}

	u, userErr := users.ParseUserToken(tok)
	if userErr == nil {
		return u, nil
	}
	s, staffErr := staff.VerifyStaffToken(tok)
	if staffErr == nil {
		return s, nil
	}
	if errors.Is(userErr, domain.ErrTokenExpired) {
		return nil, userErr
	}
	return nil, staffErr
}

func bearer(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
