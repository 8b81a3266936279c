package models

import "time"

// The admin types below are the contracts consumed by the admin screens.
// The client only moves them over the wire.

// Company is a tenant.
type Company struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Domain             string    `json:"domain"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone,omitempty"`
	Address            string    `json:"address,omitempty"`
	SubscriptionTier   string    `json:"subscription_tier"`
	SubscriptionStatus string    `json:"subscription_status"`
	MaxUsers           int       `json:"max_users"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// User is a tenant user as seen by administrators.
type User struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Username    string    `json:"username,omitempty"`
	RoleID      string    `json:"role_id"`
	RoleName    string    `json:"role_name"`
	Permissions []string  `json:"permissions,omitempty"`
	IsActive    bool      `json:"is_active"`
	Department  string    `json:"department,omitempty"`
	Position    string    `json:"position,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoleInfo is a named permission bundle within a company.
type RoleInfo struct {
	ID          string   `json:"id"`
	CompanyID   string   `json:"company_id,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
	IsSystem    bool     `json:"is_system,omitempty"`
}

// ActivityLog is one audited request.
type ActivityLog struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	UserID      string    `json:"user_id"`
	UserEmail   string    `json:"user_email,omitempty"`
	Action      string    `json:"action"`
	Resource    string    `json:"resource"`
	ResourceID  string    `json:"resource_id,omitempty"`
	Description string    `json:"description"`
	Method      string    `json:"method,omitempty"`
	Endpoint    string    `json:"endpoint,omitempty"`
	StatusCode  int       `json:"status_code,omitempty"`
	Success     bool      `json:"success"`
	Timestamp   time.Time `json:"timestamp"`
}

// Pagination is the paging block shared by admin list payloads.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

// UserPage is a page of users.
type UserPage struct {
	Users []User `json:"users"`
	Pagination
}

// CompanyPage is a page of companies.
type CompanyPage struct {
	Companies []Company `json:"companies"`
	Pagination
}

// ActivityLogPage is a page of activity logs.
type ActivityLogPage struct {
	Logs []ActivityLog `json:"logs"`
	Pagination
}
