package access

import "github.com/bgf/dashboard-api/internal/core/domain"

// Decision is the outcome of a navigation check. Denials redirect rather than
// fail.
type Decision struct {
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
}

// Decide evaluates a navigation to pathname by id, which is nil when the
// caller is not signed in. Anonymous callers are sent to the login page;
// signed-in callers without the role are sent to the dashboard.
func (t *Table) Decide(id domain.Identity, pathname string) Decision {
	if t.IsPublic(pathname) {
		return Decision{Allowed: true}
	}
	if id == nil {
		return Decision{Redirect: LoginPath}
	}

	var role domain.Role
	switch v := id.(type) {
	case domain.StaffUser:
		role = v.Role
	case domain.RegularUser:
		if v.Status == domain.UserInactive {
			return Decision{Redirect: LoginPath}
		}
		role = v.Role
	default:
		return Decision{Redirect: LoginPath}
	}

	if t.HasRouteAccess(pathname, role) {
		return Decision{Allowed: true}
	}
	return Decision{Redirect: DashboardPath}
}
