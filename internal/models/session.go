// Package models defines the data contracts shared by the tenantchat client,
// its stores, and the API it talks to.
package models

// Status is the bootstrap state of a session.
type Status string

const (
	// StatusLoading is the state from process start until the first bootstrap settles.
	StatusLoading Status = "loading"
	// StatusReady means identity is known (authenticated or not).
	StatusReady Status = "ready"
)

// UserSummary is the identity snapshot returned by the auth endpoints.
// It is replaced wholesale on every re-fetch and never edited in place.
type UserSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Username    string   `json:"username,omitempty"`
	RoleID      string   `json:"role_id"`
	RoleName    string   `json:"role_name,omitempty"`
	CompanyID   string   `json:"company_id,omitempty"`
	CompanyName string   `json:"company_name,omitempty"`
	Permissions []string `json:"permissions"`
}

// LoginResult is the payload of a successful login.
// Company and Role carry the tenant id and role name resolved by the server.
type LoginResult struct {
	User    *UserSummary `json:"user"`
	Company string       `json:"company"`
	Role    string       `json:"role"`
}

// Session is the authentication state held by the session store.
type Session struct {
	User            *UserSummary  `json:"user"`
	CompanyID       string        `json:"company_id"`
	CompanyName     string        `json:"company_name"`
	RoleName        string        `json:"role_name"`
	Permissions     PermissionSet `json:"permissions"`
	IsAuthenticated bool          `json:"is_authenticated"`
	Status          Status        `json:"status"`
	LoginPending    bool          `json:"login_pending,omitempty"`
	Error           string        `json:"error,omitempty"`
}

// NewSession returns the session as it exists at process start.
func NewSession() Session {
	return Session{Status: StatusLoading, Permissions: PermissionSet{}}
}

// Can reports whether the session holds p. Unauthenticated sessions hold nothing.
func (s Session) Can(p Permission) bool {
	return s.IsAuthenticated && s.Permissions.Has(p)
}
