package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/raphaelgruber/tenantchat/internal/models"
)

// ListOptions selects a page of an admin list. Zero values leave the choice to the server.
type ListOptions struct {
	Page   int
	Limit  int
	Search string
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	return q
}

// CreateUserInput is the body for creating a user in the caller's company.
type CreateUserInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Username   string `json:"username,omitempty"`
	RoleID     string `json:"role_id"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
	IsActive   bool   `json:"is_active"`
}

// UpdateUserInput changes the non-empty fields of a user. Setting IsActive
// to true reactivates a deactivated user.
type UpdateUserInput struct {
	Name       string `json:"name,omitempty"`
	Username   string `json:"username,omitempty"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
	IsActive   *bool  `json:"is_active,omitempty"`
	RoleID     string `json:"role_id,omitempty"`
}

// CreateCompanyInput registers a tenant together with its first administrator.
type CreateCompanyInput struct {
	CompanyName   string `json:"company_name"`
	Domain        string `json:"domain"`
	Email         string `json:"email"`
	AdminName     string `json:"admin_name"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

// ListUsers returns a page of users in the caller's company.
func (c *Client) ListUsers(ctx context.Context, opts ListOptions) (*models.UserPage, error) {
	var page models.UserPage
	if err := c.do(ctx, "GET /admin/users", http.MethodGet, "/admin/users", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateUser creates a user in the caller's company.
func (c *Client) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, "POST /admin/users", http.MethodPost, "/admin/users", nil, in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates a user in the caller's company.
func (c *Client) UpdateUser(ctx context.Context, id string, in UpdateUserInput) error {
	return c.do(ctx, "PUT /admin/users/{id}", http.MethodPut, "/admin/users/"+url.PathEscape(id), nil, in, nil)
}

// DeactivateUser disables a user's login.
func (c *Client) DeactivateUser(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE /admin/users/{id}", http.MethodDelete, "/admin/users/"+url.PathEscape(id), nil, nil, nil)
}

// ListRoles returns the roles of the caller's company.
func (c *Client) ListRoles(ctx context.Context) ([]models.RoleInfo, error) {
	var roles []models.RoleInfo
	if err := c.do(ctx, "GET /admin/roles", http.MethodGet, "/admin/roles", nil, nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// ListActivityLogs returns a page of the caller's company audit log, newest first.
func (c *Client) ListActivityLogs(ctx context.Context, opts ListOptions) (*models.ActivityLogPage, error) {
	var page models.ActivityLogPage
	if err := c.do(ctx, "GET /admin/activity-logs", http.MethodGet, "/admin/activity-logs", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListCompanies returns a page of tenants. Platform administrators only.
func (c *Client) ListCompanies(ctx context.Context, opts ListOptions) (*models.CompanyPage, error) {
	var page models.CompanyPage
	if err := c.do(ctx, "GET /admin/companies", http.MethodGet, "/admin/companies", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateCompany registers a tenant. Platform administrators only.
func (c *Client) CreateCompany(ctx context.Context, in CreateCompanyInput) (*models.Company, error) {
	var out struct {
		Company models.Company `json:"company"`
	}
	if err := c.do(ctx, "POST /admin/companies", http.MethodPost, "/admin/companies", nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Company, nil
}

// DeactivateCompany disables a tenant. Platform administrators only.
func (c *Client) DeactivateCompany(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE /admin/companies/{id}", http.MethodDelete, "/admin/companies/"+url.PathEscape(id), nil, nil, nil)
}
