// Package session holds the authentication state of the client and the
// operations that change it.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/raphaelgruber/tenantchat/internal/client"
	"github.com/raphaelgruber/tenantchat/internal/models"
	"github.com/raphaelgruber/tenantchat/internal/store"
)

var (
	// ErrMissingCredentials is returned by Login when a credential field is blank.
	ErrMissingCredentials = errors.New("company domain, email and password are required")
	// ErrNotAuthenticated is returned by operations that need a session when there is none.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// AuthAPI is the part of the REST client the session store needs.
type AuthAPI interface {
	Login(ctx context.Context, creds client.Credentials) (*models.LoginResult, error)
	Me(ctx context.Context) (*models.UserSummary, error)
	Logout(ctx context.Context) error
}

// Store owns the session state. Create one per process with New.
type Store struct {
	api    AuthAPI
	state  *store.Store[models.Session]
	logger *slog.Logger

	bootOnce sync.Once
}

// New creates a session store in the loading state.
func New(api AuthAPI, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		api:    api,
		state:  store.New(models.NewSession(), reduce, logger.With("store", "session")),
		logger: logger,
	}
}

// State returns the current session.
func (s *Store) State() models.Session {
	return s.state.State()
}

// Subscribe registers fn for session changes.
func (s *Store) Subscribe(fn func(models.Session)) func() {
	return s.state.Subscribe(fn)
}

// Bootstrap resolves the session from an existing cookie. It only talks to the
// server on its first call; later calls return the current state.
func (s *Store) Bootstrap(ctx context.Context) models.Session {
	s.bootOnce.Do(func() {
		user, err := s.api.Me(ctx)
		if err != nil {
			s.logger.Debug("no active session", "error", err)
			s.state.Dispatch(bootstrapFailed{})
			return
		}
		s.logger.Debug("session restored", "user", user.Email)
		s.state.Dispatch(bootstrapSucceeded{user: user})
	})
	return s.State()
}

// Login authenticates with creds. On failure the session stays unauthenticated,
// the server's message is stored in the session error and the error is returned.
func (s *Store) Login(ctx context.Context, creds client.Credentials) error {
	creds.Domain = strings.TrimSpace(creds.Domain)
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Domain == "" || creds.Email == "" || creds.Password == "" {
		s.state.Dispatch(loginFailed{message: ErrMissingCredentials.Error()})
		return ErrMissingCredentials
	}

	s.state.Dispatch(loginStarted{})

	result, err := s.api.Login(ctx, creds)
	if err != nil {
		s.logger.Info("login failed", "domain", creds.Domain, "email", creds.Email, "error", err)
		s.state.Dispatch(loginFailed{message: client.Message(err)})
		return err
	}

	if result.User == nil {
		// The cookie is set but the server sent no identity; read it back.
		user, err := s.api.Me(ctx)
		if err != nil {
			s.logger.Warn("login succeeded but session lookup failed", "error", err)
			s.state.Dispatch(loginFailed{message: client.Message(err)})
			return err
		}
		result.User = user
	}

	s.logger.Info("logged in", "domain", creds.Domain, "user", result.User.Email, "role", result.Role)
	s.state.Dispatch(loginSucceeded{result: result})
	return nil
}

// Logout ends the session. Local state is cleared even when the server call
// fails; that failure is logged and returned for display only.
func (s *Store) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)
	if err != nil {
		s.logger.Warn("remote logout failed", "error", err)
	}
	s.state.Dispatch(loggedOut{})
	return err
}
