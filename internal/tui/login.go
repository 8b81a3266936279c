package tui

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/tenantchat/internal/client"
)

const (
	fieldDomain = iota
	fieldEmail
	fieldPassword
	fieldCount
)

var fieldLabels = [fieldCount]string{"Company domain", "Email", "Password"}

// loginForm holds the three login inputs.
type loginForm struct {
	fields [fieldCount]textinput.Model
	active int
}

func newLoginForm(domain, email string) loginForm {
	var f loginForm
	for i := range f.fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = strings.ToLower(fieldLabels[i])
		f.fields[i] = ti
	}
	f.fields[fieldDomain].SetValue(domain)
	f.fields[fieldEmail].SetValue(email)
	f.fields[fieldPassword].EchoMode = textinput.EchoPassword
	f.fields[fieldPassword].EchoCharacter = '•'
	return f
}

// focusFirstEmpty focuses the first field still to be filled in.
func (f *loginForm) focusFirstEmpty() tea.Cmd {
	target := fieldPassword
	for i := range f.fields {
		if strings.TrimSpace(f.fields[i].Value()) == "" {
			target = i
			break
		}
	}
	return f.focus(target)
}

func (f *loginForm) focus(i int) tea.Cmd {
	f.active = (i + fieldCount) % fieldCount
	for j := range f.fields {
		if j != f.active {
			f.fields[j].Blur()
		}
	}
	return f.fields[f.active].Focus()
}

func (f *loginForm) setWidth(w int) {
	for i := range f.fields {
		f.fields[i].SetWidth(w)
	}
}

func (f loginForm) credentials() client.Credentials {
	return client.Credentials{
		Domain:   strings.TrimSpace(f.fields[fieldDomain].Value()),
		Email:    strings.TrimSpace(f.fields[fieldEmail].Value()),
		Password: f.fields[fieldPassword].Value(),
	}
}

func (f loginForm) complete() bool {
	c := f.credentials()
	return c.Domain != "" && c.Email != "" && c.Password != ""
}

func (m Model) updateLogin(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return m, m.login.focus(m.login.active + 1)
	case "shift+tab", "up":
		return m, m.login.focus(m.login.active - 1)
	case "enter":
		if m.session.LoginPending {
			return m, nil
		}
		if !m.login.complete() {
			return m, m.login.focusFirstEmpty()
		}
		creds := m.login.credentials()
		m.login.fields[fieldPassword].Reset()
		m.status = ""
		return m, m.submitLogin(creds)
	}

	var cmd tea.Cmd
	m.login.fields[m.login.active], cmd = m.login.fields[m.login.active].Update(msg)
	return m, cmd
}
