// Package access holds the role/route access model used to gate navigation.
package access

import (
	"strings"

	"github.com/bgf/dashboard-api/internal/core/domain"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Route pairs a URL pattern with the roles allowed to open it. Segments that
// start with ":" match any single non-empty path segment.
type Route struct {
	Pattern string
	Roles   []domain.Role
}

var everyone = domain.AllRoles

var reviewers = []domain.Role{
	domain.RoleProjectOfficer,
	domain.RoleHeadOfPrograms,
	domain.RoleDirector,
	domain.RoleCEO,
	domain.RoleAdmin,
}

// DefaultRoutes is the dashboard's route access table.
var DefaultRoutes = []Route{
	{Pattern: "/dashboard", Roles: everyone},
	{Pattern: "/requests", Roles: everyone},
	{Pattern: "/requests/new", Roles: []domain.Role{domain.RoleBeneficiary, domain.RoleAdmin}},
	{Pattern: "/requests/:id", Roles: everyone},
	{Pattern: "/approvals", Roles: reviewers},
	{Pattern: "/approvals/:id", Roles: reviewers},
	{Pattern: "/users", Roles: []domain.Role{domain.RoleDirector, domain.RoleCEO, domain.RoleAdmin}},
	{Pattern: "/users/:id", Roles: []domain.Role{domain.RoleAdmin}},
	{Pattern: "/reports", Roles: []domain.Role{domain.RoleHeadOfPrograms, domain.RoleDirector, domain.RoleCEO, domain.RoleAdmin}},
	{Pattern: "/activity", Roles: []domain.Role{domain.RoleDirector, domain.RoleCEO, domain.RoleAdmin}},
	{Pattern: "/notifications", Roles: everyone},
	{Pattern: "/profile", Roles: everyone},
	{Pattern: "/admin", Roles: []domain.Role{domain.RoleHeadOfPrograms, domain.RoleDirector, domain.RoleCEO, domain.RoleAdmin}},
	{Pattern: "/settings", Roles: []domain.Role{domain.RoleAdmin}},
}

// PublicRoutes bypass the access check entirely.
var PublicRoutes = []string{"/", "/login", "/staff-login", "/reset-password", "/register"}

type compiledRoute struct {
	pattern  string
	segments []string
	dynamic  bool
	roles    map[domain.Role]struct{}
}

// Table is a compiled, read-only route access table.
type Table struct {
	exact  map[string]*compiledRoute
	routes []*compiledRoute
	public map[string]struct{}
}

// Compile builds a Table from routes. Order matters for pattern matches: the
// first matching pattern wins.
func Compile(routes []Route, public []string) *Table {
	t := &Table{
		exact:  make(map[string]*compiledRoute, len(routes)),
		public: make(map[string]struct{}, len(public)),
	}
	for _, r := range routes {
		cr := &compiledRoute{
			pattern:  r.Pattern,
			segments: splitPath(r.Pattern),
			roles:    make(map[domain.Role]struct{}, len(r.Roles)),
		}
		for _, role := range r.Roles {
			cr.roles[role] = struct{}{}
		}
		for _, seg := range cr.segments {
			if strings.HasPrefix(seg, ":") {
				cr.dynamic = true
				break
			}
		}
		if !cr.dynamic {
			t.exact[normalize(r.Pattern)] = cr
		}
		t.routes = append(t.routes, cr)
	}
	for _, p := range public {
		t.public[normalize(p)] = struct{}{}
	}
	return t
}

// Default is the compiled DefaultRoutes table.
var Default = Compile(DefaultRoutes, PublicRoutes)

// IsPublic reports whether pathname skips the access check.
func (t *Table) IsPublic(pathname string) bool {
	_, ok := t.public[normalize(pathname)]
	return ok
}

// HasRouteAccess reports whether role may open pathname. Exact matches are
// tried first, then patterns in table order. No match denies.
func (t *Table) HasRouteAccess(pathname string, role domain.Role) bool {
	r := t.match(normalize(pathname))
	if r == nil {
		return false
	}
	_, ok := r.roles[role]
	return ok
}

// Pattern returns the table pattern that pathname resolves to.
func (t *Table) Pattern(pathname string) (string, bool) {
	r := t.match(normalize(pathname))
	if r == nil {
		return "", false
	}
	return r.pattern, true
}

func (t *Table) match(path string) *compiledRoute {
	if r, ok := t.exact[path]; ok {
		return r
	}
	segs := splitPath(path)
	for _, r := range t.routes {
		if r.dynamic && matchSegments(r.segments, segs) {
			return r
		}
	}
	return nil
}

// Navigation lists the static routes a role may open, in table order.
func (t *Table) Navigation(role domain.Role) []string {
	out := []string{}
	for _, r := range t.routes {
		if r.dynamic {
			continue
		}
		if _, ok := r.roles[role]; ok {
			out = append(out, r.pattern)
		}
	}
	return out
}

func matchSegments(pattern, path []string) bool {
	if len(pattern) != len(path) {
		return false
	}
	for i, seg := range pattern {
		if strings.HasPrefix(seg, ":") {
			if path[i] == "" {
				return false
			}
			continue
		}
		if seg != path[i] {
			return false
		}
	}
	return true
}

func normalize(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			return "/"
		}
	}
	return p
}

func splitPath(p string) []string {
	return strings.Split(strings.Trim(normalize(p), "/"), "/")
}
