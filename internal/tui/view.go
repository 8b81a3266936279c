package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/tenantchat/internal/guard"
	"github.com/raphaelgruber/tenantchat/internal/models"
)

// View renders the current screen.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m Model) render() string {
	switch m.screen {
	case screenLogin:
		return m.renderLogin()
	case screenChat:
		return m.renderChat()
	case screenBlocked:
		return lipgloss.JoinVertical(lipgloss.Left,
			errorStyle.Render(m.blocked),
			hintStyle.Render("enter to go back, ctrl+c to quit"),
		)
	default:
		return fmt.Sprintf("%s Loading session...", m.spinner.View())
	}
}

func (m Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Sign in to tenantchat"))
	b.WriteString("\n\n")
	for i, f := range m.login.fields {
		label := fieldLabels[i]
		if i == m.login.active {
			label = selectedStyle.Render(label)
		}
		fmt.Fprintf(&b, "%s\n%s\n\n", label, f.View())
	}
	switch {
	case m.session.LoginPending:
		fmt.Fprintf(&b, "%s Signing in...\n", m.spinner.View())
	case m.session.Error != "":
		b.WriteString(errorStyle.Render(m.session.Error) + "\n")
	}
	b.WriteString(hintStyle.Render("tab to move, enter to sign in, ctrl+c to quit"))
	return loginBoxStyle.Render(b.String())
}

func (m Model) renderChat() string {
	header := headerStyle.Render(fmt.Sprintf("%s · %s (%s)",
		m.session.CompanyName, userName(m.session.User), m.session.RoleName))
	if routes := guard.VisibleAdminRoutes(m.session); len(routes) > 0 {
		header += hintStyle.Render(fmt.Sprintf("  admin: %d pages (use tenantchat admin)", len(routes)))
	}

	sidebar := paneStyle
	main := paneStyle
	if m.focus == focusSidebar {
		sidebar = focusedPane
	} else {
		main = focusedPane
	}
	bodyHeight := max(m.height-4, 5)

	left := sidebar.Width(sidebarWidth).Height(bodyHeight).Render(m.renderHistory(bodyHeight))
	right := main.Height(bodyHeight).Render(lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.viewport.View(),
		m.renderInput(),
	))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		m.renderStatus(),
	)
}

func (m Model) renderHistory(height int) string {
	if len(m.chats.History) == 0 {
		if m.chats.Loading {
			return m.spinner.View() + " loading"
		}
		return hintStyle.Render("No conversations.\nctrl+n to start one.")
	}

	// Keep the cursor in view
	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	var lines []string
	for i := start; i < len(m.chats.History) && len(lines) < height; i++ {
		c := m.chats.History[i]
		title := truncate(c.Title, sidebarWidth-4)
		switch {
		case i == m.cursor && m.focus == focusSidebar:
			title = selectedStyle.Render("› " + title)
		default:
			title = "  " + title
		}
		if c.ID == m.chats.Current.ID {
			title = activeStyle.Render(title)
		}
		lines = append(lines, title)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTitle() string {
	if m.chats.Current.ID == "" {
		return hintStyle.Render("No conversation open")
	}
	return headerStyle.Render(m.chats.Current.Title)
}

func (m Model) renderInput() string {
	if m.chats.IsComposing {
		return fmt.Sprintf("%s %s", m.spinner.View(), hintStyle.Render("The assistant is answering..."))
	}
	return m.input.View()
}

func (m Model) renderStatus() string {
	switch {
	case m.chats.Error != "":
		return errorStyle.Render(m.chats.Error) + hintStyle.Render("  (esc to dismiss)")
	case m.status != "":
		return hintStyle.Render(m.status)
	default:
		return hintStyle.Render("tab switch pane · enter open/send · ctrl+n new · ctrl+d delete · ctrl+l logout · ctrl+c quit")
	}
}

// renderMessages renders a conversation transcript wrapped to width.
func renderMessages(msgs []models.Message, width int) string {
	if len(msgs) == 0 {
		return hintStyle.Render("Say something to start.")
	}
	wrap := lipgloss.NewStyle().Width(max(width-2, 10))

	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		speaker := userStyle.Render("You")
		if msg.Role == models.RoleAssistant {
			speaker = botStyle.Render("Assistant")
		}
		b.WriteString(speaker + "\n")
		b.WriteString(wrap.Render(msg.Content) + "\n")
		for _, a := range msg.Attachments {
			b.WriteString(hintStyle.Render(fmt.Sprintf("📎 %s (%d bytes)", a.Filename, a.Size)) + "\n")
		}
	}
	return b.String()
}

func userName(u *models.UserSummary) string {
	if u == nil {
		return ""
	}
	return u.Name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
