// Package tui is the full-screen chat interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/tenantchat/internal/app"
	"github.com/raphaelgruber/tenantchat/internal/chat"
	"github.com/raphaelgruber/tenantchat/internal/client"
	"github.com/raphaelgruber/tenantchat/internal/guard"
	"github.com/raphaelgruber/tenantchat/internal/models"
)

type screen int

const (
	screenLoading screen = iota
	screenLogin
	screenChat
	screenBlocked
)

type focus int

const (
	focusSidebar focus = iota
	focusInput
)

// Model is the bubbletea model of the chat interface. Store operations run
// in commands; state changes come back through the store subscriptions.
type Model struct {
	app *app.App
	ctx context.Context
	nav *navigator

	session models.Session
	chats   chat.State

	location string
	returnTo string
	screen   screen
	blocked  string

	width, height int
	focus         focus
	cursor        int
	status        string

	login    loginForm
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
}

// New creates the model for a.
func New(ctx context.Context, a *app.App) Model {
	input := textinput.New()
	input.Placeholder = "Message the assistant"
	input.Prompt = "> "
	input.CharLimit = 4000

	return Model{
		app:      a,
		ctx:      ctx,
		nav:      newNavigator(a.Lifecycle),
		session:  a.Session.State(),
		chats:    a.Chats.State(),
		location: guard.HomePath,
		screen:   screenLoading,
		focus:    focusSidebar,
		login:    newLoginForm(a.Domain(), a.Email()),
		input:    input,
		viewport: viewport.New(viewport.WithWidth(80), viewport.WithHeight(20)),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Init bootstraps the session.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.bootstrap(), m.spinner.Tick)
}

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenLogin:
			return m.updateLogin(msg)
		case screenChat:
			return m.updateChat(msg)
		case screenBlocked:
			if msg.String() == "esc" || msg.String() == "enter" {
				return m.navigate(guard.HomePath)
			}
		}
		return m, nil

	case sessionMsg:
		m.session = models.Session(msg)
		return m.resolve(guard.ChatID(m.location))

	case chatStateMsg:
		m.chats = chat.State(msg)
		m.syncChat()
		return m, nil

	case navigatedMsg:
		if msg.err != nil {
			m.status = client.Message(msg.err)
		}
		return m, nil

	case createdMsg:
		if msg.err != nil {
			m.status = client.Message(msg.err)
			return m, nil
		}
		m.status = ""
		m.focus = focusInput
		focusCmd := m.input.Focus()
		next, cmd := m.navigate(guard.ChatPath(msg.id))
		return next, tea.Batch(cmd, focusCmd)

	case doneMsg:
		switch {
		case msg.err != nil:
			m.status = client.Message(msg.err)
		case msg.status != "":
			m.status = msg.status
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.screen == screenChat && m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// resolve applies the guards to the current location and, when the active
// conversation changed from prevKey, hands the change to the lifecycle controller.
func (m Model) resolve(prevKey string) (tea.Model, tea.Cmd) {
	prevScreen := m.screen

	for range 3 {
		d := guard.Resolve(m.session, m.location)
		switch d.Outcome {
		case guard.Pending:
			m.screen = screenLoading
		case guard.Redirect:
			if d.To == guard.LoginPath && d.From != guard.LoginPath {
				m.returnTo = d.From
			}
			m.location = d.To
			if d.From == guard.LoginPath && m.returnTo != "" {
				m.location, m.returnTo = m.returnTo, ""
			}
			continue
		case guard.Allow:
			if m.location == guard.LoginPath || m.location == guard.RegisterPath {
				m.screen = screenLogin
			} else {
				m.screen = screenChat
			}
		case guard.Denied, guard.NotFound:
			m.screen = screenBlocked
			m.blocked = d.Message()
		}
		break
	}

	var cmds []tea.Cmd
	if key := guard.ChatID(m.location); key != prevKey {
		cmds = append(cmds, m.enterChat(key))
	}
	if m.screen == screenChat && prevScreen != screenChat {
		cmds = append(cmds, m.fetchHistory())
	}
	if m.screen == screenLogin && prevScreen != screenLogin {
		cmds = append(cmds, m.login.focusFirstEmpty())
	}
	m.layout()
	return m, tea.Batch(cmds...)
}

// navigate moves to location, subject to the guards.
func (m Model) navigate(location string) (tea.Model, tea.Cmd) {
	prevKey := guard.ChatID(m.location)
	m.location = location
	return m.resolve(prevKey)
}

func (m Model) updateChat(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		if m.focus == focusSidebar {
			m.focus = focusInput
			return m, m.input.Focus()
		}
		m.focus = focusSidebar
		m.input.Blur()
		return m, nil
	case "ctrl+n":
		m.status = "Creating conversation..."
		return m, m.createChat()
	case "ctrl+d":
		if m.chats.Current.ID == "" {
			return m, nil
		}
		id := m.chats.Current.ID
		next, cmd := m.navigate(guard.HomePath)
		return next, tea.Batch(cmd, m.deleteChat(id))
	case "ctrl+l":
		return m, m.logout()
	case "esc":
		m.status = ""
		return m, m.clearError()
	}

	if m.focus == focusSidebar {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.chats.History)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(m.chats.History) {
				return m.navigate(guard.ChatPath(m.chats.History[m.cursor].ID))
			}
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if msg.String() == "enter" {
		return m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the input line. The input is disabled while a reply is pending.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.chats.IsComposing {
		return m, nil
	}
	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}
	chatID := m.chats.Current.ID
	if chatID == "" {
		m.status = "Open a conversation or press ctrl+n to start one"
		return m, nil
	}
	m.input.Reset()
	m.status = ""
	return m, m.send(chatID, content)
}

// syncChat updates the widgets derived from the chat state.
func (m *Model) syncChat() {
	if m.cursor >= len(m.chats.History) {
		m.cursor = max(len(m.chats.History)-1, 0)
	}
	m.viewport.SetContent(renderMessages(m.chats.Current.Messages, m.viewport.Width()))
	m.viewport.GotoBottom()
}

// layout sizes the widgets to the window.
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	mainWidth := max(m.width-sidebarWidth-4, 20)
	m.viewport.SetWidth(mainWidth)
	m.viewport.SetHeight(max(m.height-7, 3))
	m.input.SetWidth(mainWidth - 4)
	m.login.setWidth(min(m.width-8, 50))
	m.syncChat()
}

func (m Model) bootstrap() tea.Cmd {
	return func() tea.Msg {
		return sessionMsg(m.app.Session.Bootstrap(m.ctx))
	}
}

func (m Model) enterChat(key string) tea.Cmd {
	location := guard.HomePath
	if key != "" {
		location = guard.ChatPath(key)
	}
	seq := m.nav.next()
	return func() tea.Msg {
		ran, err := m.nav.navigate(m.ctx, seq, key)
		if !ran {
			m.app.Logger.Debug("navigation superseded", "location", location)
			return nil
		}
		return navigatedMsg{location: location, err: err}
	}
}

func (m Model) fetchHistory() tea.Cmd {
	return func() tea.Msg {
		return doneMsg{err: m.app.Chats.FetchHistory(m.ctx)}
	}
}

func (m Model) createChat() tea.Cmd {
	return func() tea.Msg {
		id, err := m.app.Chats.CreateChat(m.ctx, "")
		return createdMsg{id: id, err: err}
	}
}

func (m Model) deleteChat(id string) tea.Cmd {
	return func() tea.Msg {
		if err := m.app.Chats.DeleteChat(m.ctx, id); err != nil {
			return doneMsg{err: err}
		}
		return doneMsg{status: "Conversation deleted"}
	}
}

func (m Model) send(chatID, content string) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{err: m.app.Chats.SendMessage(m.ctx, chatID, content)}
	}
}

func (m Model) logout() tea.Cmd {
	return func() tea.Msg {
		if err := m.app.Session.Logout(m.ctx); err != nil {
			return doneMsg{status: "Logged out (server did not confirm)"}
		}
		return doneMsg{status: "Logged out"}
	}
}

func (m Model) clearError() tea.Cmd {
	return func() tea.Msg {
		m.app.Chats.ClearError()
		return nil
	}
}

func (m Model) submitLogin(creds client.Credentials) tea.Cmd {
	return func() tea.Msg {
		if err := m.app.Session.Login(m.ctx, creds); err != nil {
			return doneMsg{}
		}
		m.app.Remember(creds.Domain, creds.Email)
		return doneMsg{status: fmt.Sprintf("Welcome, %s", m.app.Session.State().User.Name)}
	}
}
