package fakeapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raphaelgruber/tenantchat/internal/models"
)

// maxQueryLogLen is the maximum length for logged query strings before truncation.
const maxQueryLogLen = 200

// slowRequestThreshold is the duration above which requests are logged at WARN level.
const slowRequestThreshold = 100 * time.Millisecond

// requestLogger logs every request with timing. Server errors are logged at
// ERROR, slow requests at WARN, everything else at DEBUG.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			attrs = append(attrs, "query", truncate(q, maxQueryLogLen))
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed", attrs...)
		} else if duration > slowRequestThreshold {
			logger.Warn("slow request", attrs...)
		} else {
			logger.Debug("request completed", attrs...)
		}
	}
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// recorder remembers each request and answers with an injected failure when
// one is queued for the matched route.
func (s *Server) recorder() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()

		s.mu.Lock()
		key := c.Request.Method + " " + route
		var injected *failure
		if queue := s.failures[key]; len(queue) > 0 {
			injected = &queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if injected != nil {
			fail(c, injected.status, injected.message)
		} else {
			c.Next()
		}

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Route:  route,
			Status: c.Writer.Status(),
		})
		s.mu.Unlock()
	}
}

// envelope is the response shape of every endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func ok(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: message})
}

const accountKey = "account"

// authenticate resolves the session cookie to an active account.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(cookieName)
		if err != nil || raw == "" {
			fail(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		claims, err := s.parseToken(raw)
		if err != nil {
			fail(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		s.mu.Lock()
		var acc account
		var company models.Company
		stored, found := s.users[claims.Subject]
		if found {
			acc = *stored
			if c, ok := s.companies[acc.CompanyID]; ok {
				company = *c
			}
		}
		s.mu.Unlock()

		switch {
		case !found:
			fail(c, http.StatusUnauthorized, "User not found")
			return
		case !acc.IsActive:
			fail(c, http.StatusUnauthorized, "Account is deactivated")
			return
		case !company.IsActive:
			fail(c, http.StatusUnauthorized, "Company is deactivated")
			return
		}

		c.Set(accountKey, &acc)
		c.Next()
	}
}

// requirePermission lets the request through when the caller holds perm.
func requirePermission(perm models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		acc := currentAccount(c)
		if !models.NewPermissionSet(acc.Permissions...).Has(perm) {
			fail(c, http.StatusForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

// audit appends an activity log entry for mutating requests of authenticated users.
func (s *Server) audit() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet {
			return
		}
		v, exists := c.Get(accountKey)
		if !exists {
			return
		}
		acc := v.(*account)
		status := c.Writer.Status()
		action, resource := describe(c.Request.Method, c.FullPath())

		s.mu.Lock()
		s.logs = append(s.logs, models.ActivityLog{
			ID:          newID(),
			CompanyID:   acc.CompanyID,
			UserID:      acc.ID,
			UserEmail:   acc.Email,
			Action:      action,
			Resource:    resource,
			ResourceID:  firstParam(c),
			Description: c.Request.Method + " " + c.Request.URL.Path,
			Method:      c.Request.Method,
			Endpoint:    c.Request.URL.Path,
			StatusCode:  status,
			Success:     status < http.StatusBadRequest,
			Timestamp:   s.now(),
		})
		s.mu.Unlock()
	}
}

func currentAccount(c *gin.Context) *account {
	return c.MustGet(accountKey).(*account)
}

func firstParam(c *gin.Context) string {
	if len(c.Params) == 0 {
		return ""
	}
	return c.Params[0].Value
}

// describe maps a route to the audit action and resource names.
func describe(method, route string) (action, resource string) {
	route = strings.TrimPrefix(route, "/api/")
	parts := strings.Split(route, "/")
	resource = parts[0]
	if resource == "admin" && len(parts) > 1 {
		resource = parts[1]
	}
	last := parts[len(parts)-1]
	switch {
	case last == "cleanup" || last == "login" || last == "logout" || last == "documents":
		action = last
	case method == http.MethodPost:
		action = "create"
	case method == http.MethodPut:
		action = "update"
	case method == http.MethodDelete:
		action = "delete"
	default:
		action = strings.ToLower(method)
	}
	return action, resource
}
