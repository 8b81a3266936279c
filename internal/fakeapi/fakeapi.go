// Package fakeapi is an in-memory implementation of the tenantchat REST API.
// It backs the client tests and local development; it keeps nothing on disk
// and the assistant only echoes.
package fakeapi

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/raphaelgruber/tenantchat/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Server holds tenants, users, chats and the audit log in memory.
type Server struct {
	mu        sync.Mutex
	companies map[string]*models.Company
	roles     map[string]*models.RoleInfo
	users     map[string]*account
	chats     map[string]*chatRecord
	logs      []models.ActivityLog

	failures map[string][]failure
	requests []RecordedRequest

	secret       []byte
	logger       *slog.Logger
	loginPayload bool
	replyDelay   time.Duration
	now          func() time.Time

	engine *gin.Engine
}

type account struct {
	models.User
	passwordHash []byte
}

type chatRecord struct {
	models.ConversationSummary
	userID   string
	messages []models.Message
}

type failure struct {
	status  int
	message string
}

// RecordedRequest is a request the server has handled.
type RecordedRequest struct {
	Method string
	Path   string
	Route  string
	Status int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithSecret sets the session signing key. By default a random key is used.
func WithSecret(secret []byte) Option {
	return func(s *Server) { s.secret = secret }
}

// WithoutLoginPayload makes login answer with no data, leaving the client to
// read the session back from /auth/me.
func WithoutLoginPayload() Option {
	return func(s *Server) { s.loginPayload = false }
}

// WithReplyDelay makes the assistant take d before answering.
func WithReplyDelay(d time.Duration) Option {
	return func(s *Server) { s.replyDelay = d }
}

// New creates an empty server.
func New(opts ...Option) *Server {
	s := &Server{
		companies:    make(map[string]*models.Company),
		roles:        make(map[string]*models.RoleInfo),
		users:        make(map[string]*account),
		chats:        make(map[string]*chatRecord),
		failures:     make(map[string][]failure),
		logger:       slog.New(slog.DiscardHandler),
		loginPayload: true,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.secret == nil {
		s.secret = make([]byte, 32)
		_, _ = rand.Read(s.secret)
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler serving the API under /api.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func newID() string {
	return strings.ToLower(ulid.Make().String())
}

// AddCompany registers a tenant with the default roles and returns its id.
func (s *Server) AddCompany(name, domain string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addCompanyLocked(name, domain, "")
}

func (s *Server) addCompanyLocked(name, domain, email string) string {
	now := s.now()
	c := &models.Company{
		ID:                 newID(),
		Name:               name,
		Domain:             strings.ToLower(domain),
		Email:              email,
		SubscriptionTier:   "free",
		SubscriptionStatus: "active",
		MaxUsers:           10,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.companies[c.ID] = c

	for _, name := range roleOrder {
		r := &models.RoleInfo{
			ID:          newID(),
			CompanyID:   c.ID,
			Name:        name,
			Description: roleDescriptions[name],
			Permissions: defaultPermissions(name),
			IsSystem:    true,
		}
		s.roles[r.ID] = r
	}
	return c.ID
}

// UserSeed describes a user to create.
type UserSeed struct {
	Name     string
	Email    string
	Password string
	// Role is a role name such as "employee" or "company_admin".
	Role string
	// Permissions overrides the role's permissions when non-nil.
	Permissions []string
}

// AddUser creates a user in the tenant with the given domain and returns its id.
func (s *Server) AddUser(domain string, seed UserSeed) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	company := s.companyByDomainLocked(domain)
	if company == nil {
		return "", fmt.Errorf("add user: unknown company domain %q", domain)
	}
	role := s.roleByNameLocked(company.ID, seed.Role)
	if role == nil {
		return "", fmt.Errorf("add user: unknown role %q", seed.Role)
	}
	acc, err := s.createUserLocked(company, role, seed.Name, seed.Email, seed.Password)
	if err != nil {
		return "", fmt.Errorf("add user: %w", err)
	}
	if seed.Permissions != nil {
		acc.Permissions = append([]string{}, seed.Permissions...)
	}
	return acc.ID, nil
}

func (s *Server) createUserLocked(company *models.Company, role *models.RoleInfo, name, email, password string) (*account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.CompanyID == company.ID && u.Email == email {
			return nil, fmt.Errorf("user with this email already exists")
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	acc := &account{
		User: models.User{
			ID:          newID(),
			CompanyID:   company.ID,
			Email:       email,
			Name:        name,
			RoleID:      role.ID,
			RoleName:    role.Name,
			Permissions: append([]string{}, role.Permissions...),
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		passwordHash: hash,
	}
	s.users[acc.ID] = acc
	return acc, nil
}

// FailNext makes the next request to route answer with status and message.
// route is the registered path, e.g. "/api/chats/:chat_id/messages".
func (s *Server) FailNext(method, route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + route
	s.failures[key] = append(s.failures[key], failure{status: status, message: message})
}

// Requests returns the requests handled so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// ChatExists reports whether a chat with id is stored.
func (s *Server) ChatExists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.chats[id]
	return ok
}

// MessageCount returns the number of stored messages of chat id.
func (s *Server) MessageCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.chats[id]; ok {
		return len(c.messages)
	}
	return 0
}

func (s *Server) companyByDomainLocked(domain string) *models.Company {
	domain = strings.ToLower(strings.TrimSpace(domain))
	for _, c := range s.companies {
		if c.Domain == domain {
			return c
		}
	}
	return nil
}

func (s *Server) roleByNameLocked(companyID, name string) *models.RoleInfo {
	for _, r := range s.roles {
		if r.CompanyID == companyID && r.Name == name {
			return r
		}
	}
	return nil
}

func (s *Server) summary(acc *account) *models.UserSummary {
	company := s.companies[acc.CompanyID]
	sum := &models.UserSummary{
		ID:          acc.ID,
		Name:        acc.Name,
		Email:       acc.Email,
		Username:    acc.Username,
		RoleID:      acc.RoleID,
		RoleName:    acc.RoleName,
		CompanyID:   acc.CompanyID,
		Permissions: append([]string{}, acc.Permissions...),
	}
	if company != nil {
		sum.CompanyName = company.Name
	}
	return sum
}
