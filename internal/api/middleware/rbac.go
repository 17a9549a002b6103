package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/bgf/dashboard-api/internal/core/domain"
)

// RBAC enforces role-based access control. It must run after Authenticate.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return domain.ErrTokenMissing
			}
			if _, ok := allowed[id.IdentityRole()]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// StaffOnly admits every reviewing role.
func StaffOnly() echo.MiddlewareFunc {
	return RBAC(domain.StaffRoles...)
}
