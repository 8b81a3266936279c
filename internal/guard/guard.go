// Package guard decides what a front end shows for a location given the
// current session: the page, a pending indicator, a redirect, or an inline
// access-denied notice.
package guard

import (
	"fmt"

	"github.com/raphaelgruber/tenantchat/internal/models"
)

// Outcome is the result of a guard check.
type Outcome int

const (
	// Pending means the session is still loading; show a neutral placeholder.
	Pending Outcome = iota
	// Allow means the location may be shown.
	Allow
	// Redirect means navigate to Decision.To instead.
	Redirect
	// Denied means the user is authenticated but lacks Decision.Permission.
	Denied
	// NotFound means no page exists at the location.
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Denied:
		return "denied"
	case NotFound:
		return "not found"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Decision is what a guard tells the front end to do.
type Decision struct {
	Outcome Outcome
	// To is the redirect target.
	To string
	// From is the location that was attempted, kept so login can return there.
	From string
	// Permission is the missing permission when Outcome is Denied.
	Permission models.Permission
}

// Message is a user-facing description of a Denied or NotFound decision.
func (d Decision) Message() string {
	switch d.Outcome {
	case Denied:
		return fmt.Sprintf("Access denied. Required permission: %s", d.Permission)
	case NotFound:
		return fmt.Sprintf("No page at %s", d.From)
	default:
		return ""
	}
}

// RequireAuth gates a location on an authenticated session.
func RequireAuth(s models.Session, location string) Decision {
	if s.Status != models.StatusReady {
		return Decision{Outcome: Pending, From: location}
	}
	if !s.IsAuthenticated {
		return Decision{Outcome: Redirect, To: LoginPath, From: location}
	}
	return Decision{Outcome: Allow, From: location}
}

// RequirePermission gates a location on an authenticated session holding perm.
// A missing permission is reported inline rather than redirected, and an
// empty or nil permission set denies.
func RequirePermission(s models.Session, location string, perm models.Permission) Decision {
	d := RequireAuth(s, location)
	if d.Outcome != Allow {
		return d
	}
	if perm == "" || !s.Permissions.Has(perm) {
		return Decision{Outcome: Denied, From: location, Permission: perm}
	}
	return d
}

// RedirectIfAuthenticated keeps signed-in users off the login and register pages.
func RedirectIfAuthenticated(s models.Session, location string) Decision {
	if s.Status == models.StatusReady && s.IsAuthenticated {
		return Decision{Outcome: Redirect, To: HomePath, From: location}
	}
	return Decision{Outcome: Allow, From: location}
}
