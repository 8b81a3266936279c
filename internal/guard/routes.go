package guard

import (
	"net/url"
	"strings"

	"github.com/raphaelgruber/tenantchat/internal/models"
)

// Well-known locations.
const (
	LoginPath    = "/login"
	RegisterPath = "/register"
	HomePath     = "/"
	AdminPath    = "/admin"
	chatPrefix   = "/chat/"
)

// Route describes one admin page and the permission it needs.
type Route struct {
	Path       string
	Title      string
	Permission models.Permission
}

// AdminRoutes lists the admin pages in menu order.
var AdminRoutes = []Route{
	{Path: "/admin/companies", Title: "Companies", Permission: models.PermissionManageCompanies},
	{Path: "/admin/users", Title: "Users", Permission: models.PermissionViewUsers},
	{Path: "/admin/logs", Title: "Activity Logs", Permission: models.PermissionViewActivityLogs},
	{Path: "/admin/analytics", Title: "Analytics", Permission: models.PermissionViewAnalytics},
	{Path: "/admin/roles", Title: "Roles", Permission: models.PermissionViewRoles},
	{Path: "/admin/settings", Title: "Settings", Permission: models.PermissionManageCompanySettings},
}

// adminLanding is the order in which the admin index picks a page.
var adminLanding = []string{"/admin/companies", "/admin/users", "/admin/logs"}

// ChatPath is the location of a conversation.
func ChatPath(id string) string {
	return chatPrefix + url.PathEscape(id)
}

// ChatID returns the conversation id of a "/chat/{id}" location, or "" for
// any other location.
func ChatID(location string) string {
	rest, ok := strings.CutPrefix(clean(location), chatPrefix)
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return ""
	}
	id, err := url.PathUnescape(rest)
	if err != nil {
		return ""
	}
	return id
}

// AdminRoute returns the admin page at location.
func AdminRoute(location string) (Route, bool) {
	location = clean(location)
	for _, r := range AdminRoutes {
		if r.Path == location {
			return r, true
		}
	}
	return Route{}, false
}

// VisibleAdminRoutes returns the admin pages s may open.
func VisibleAdminRoutes(s models.Session) []Route {
	var out []Route
	for _, r := range AdminRoutes {
		if s.Can(r.Permission) {
			out = append(out, r)
		}
	}
	return out
}

// Resolve returns the decision for any location using the route table.
func Resolve(s models.Session, location string) Decision {
	location = clean(location)

	switch {
	case location == LoginPath || location == RegisterPath:
		return RedirectIfAuthenticated(s, location)
	case location == HomePath || ChatID(location) != "":
		return RequireAuth(s, location)
	case location == AdminPath:
		return adminIndex(s, location)
	}

	if r, ok := AdminRoute(location); ok {
		return RequirePermission(s, location, r.Permission)
	}

	d := RequireAuth(s, location)
	if d.Outcome == Allow {
		d.Outcome = NotFound
	}
	return d
}

// adminIndex sends the user to the first admin page their role is meant to land on.
func adminIndex(s models.Session, location string) Decision {
	d := RequireAuth(s, location)
	if d.Outcome != Allow {
		return d
	}
	for _, path := range adminLanding {
		r, _ := AdminRoute(path)
		if s.Permissions.Has(r.Permission) {
			return Decision{Outcome: Redirect, To: r.Path, From: location}
		}
	}
	return RequirePermission(s, "/admin/analytics", models.PermissionViewAnalytics).redirectFrom(location)
}

// redirectFrom turns an Allow for a fallback page into a redirect to it.
func (d Decision) redirectFrom(location string) Decision {
	if d.Outcome == Allow {
		return Decision{Outcome: Redirect, To: d.From, From: location}
	}
	d.From = location
	return d
}

func clean(location string) string {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		location = location[:i]
	}
	if location == "" {
		return HomePath
	}
	if len(location) > 1 {
		location = strings.TrimRight(location, "/")
		if location == "" {
			return HomePath
		}
	}
	return location
}
