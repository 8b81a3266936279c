// Package app assembles the tenantchat client: one instance of each store,
// shared by whichever front end is running.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/raphaelgruber/tenantchat/internal/chat"
	"github.com/raphaelgruber/tenantchat/internal/client"
	"github.com/raphaelgruber/tenantchat/internal/config"
	"github.com/raphaelgruber/tenantchat/internal/lifecycle"
	"github.com/raphaelgruber/tenantchat/internal/metrics"
	"github.com/raphaelgruber/tenantchat/internal/session"
)

// App holds the wired components of a running client.
type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Metrics   *metrics.Collector
	Client    *client.Client
	Session   *session.Store
	Chats     *chat.Store
	Lifecycle *lifecycle.Controller

	state    config.State
	closeLog func() error
}

// New builds the client from cfg. Logs go to the log file and, when stderr is
// non-nil, to stderr. The saved cookie session is restored into the client.
func New(cfg config.Config, stderr io.Writer) (*App, error) {
	logger, closeLog := config.SetupLogger(stderr, cfg.StderrLevel, cfg.LogFile, cfg.LogLevel)

	m := metrics.NewCollector()
	c, err := client.New(cfg.APIURL, client.WithTimeout(cfg.ClientTimeout), client.WithMetrics(m))
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("create client: %w", err)
	}

	st, err := config.LoadState(cfg.StatePath())
	if err != nil {
		logger.Warn("ignoring unreadable state file", "path", cfg.StatePath(), "error", err)
		st = config.State{}
	}
	st.RestoreCookies(c.Jar(), c.BaseURL())

	chats := chat.New(c, logger)
	a := &App{
		Config:    cfg,
		Logger:    logger,
		Metrics:   m,
		Client:    c,
		Session:   session.New(c, logger),
		Chats:     chats,
		Lifecycle: lifecycle.New(chats, c, logger),
		state:     st,
		closeLog:  closeLog,
	}
	logger.Debug("client ready", "api", cfg.APIURL, "restored_cookies", len(st.Cookies))
	return a, nil
}

// Domain is the tenant domain to offer at login: the last one used, else the configured default.
func (a *App) Domain() string {
	if a.state.Domain != "" {
		return a.state.Domain
	}
	return a.Config.DefaultDomain
}

// Email is the last email used to log in.
func (a *App) Email() string {
	return a.state.Email
}

// Remember records the identity of a successful login for the next run.
func (a *App) Remember(domain, email string) {
	a.state.Domain = domain
	a.state.Email = email
}

// Close finishes outstanding background work, cleans up the open
// conversation and saves the cookie session.
func (a *App) Close() error {
	a.Lifecycle.Close()
	a.Lifecycle.Wait()
	a.Chats.Wait()

	a.state.APIURL = a.Client.BaseURL().String()
	a.state.CaptureCookies(a.Client.Jar(), a.Client.BaseURL())
	saveErr := config.SaveState(a.Config.StatePath(), a.state)
	if saveErr != nil {
		a.Logger.Error("failed to save state", "error", saveErr)
	}

	return errors.Join(saveErr, a.closeLog())
}
