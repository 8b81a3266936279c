package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/raphaelgruber/tenantchat/internal/models"
)

// ErrNoIdentity is returned by Me when the server answers without a user.
var ErrNoIdentity = errors.New("server returned no user")

// Credentials identify a user within a tenant.
type Credentials struct {
	Domain   string `json:"company_domain"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates against the tenant selected by creds.Domain. On success
// the server sets the session cookie. The returned result may carry a nil
// User when the server answers without a payload.
func (c *Client) Login(ctx context.Context, creds Credentials) (*models.LoginResult, error) {
	var result models.LoginResult
	if err := c.do(ctx, "POST /auth/login", http.MethodPost, "/auth/login", nil, creds, &result); err != nil {
		return nil, err
	}
	if result.User != nil && result.User.ID == "" {
		result.User = nil
	}
	return &result, nil
}

// Me returns the user bound to the current session cookie.
func (c *Client) Me(ctx context.Context) (*models.UserSummary, error) {
	var user models.UserSummary
	if err := c.do(ctx, "GET /auth/me", http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, ErrNoIdentity
	}
	return &user, nil
}

// Logout invalidates the session cookie.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "POST /auth/logout", http.MethodPost, "/auth/logout", nil, nil, nil)
}
