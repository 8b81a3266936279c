package tui

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/tenantchat/internal/app"
	"github.com/raphaelgruber/tenantchat/internal/chat"
	"github.com/raphaelgruber/tenantchat/internal/models"
)

// Run shows the chat interface until the user quits.
func Run(a *app.App) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(New(ctx, a))

	// Store listeners run on the dispatching goroutine, which is always a
	// command goroutine, never Update.
	unsubSession := a.Session.Subscribe(func(s models.Session) { p.Send(sessionMsg(s)) })
	defer unsubSession()
	unsubChats := a.Chats.Subscribe(func(s chat.State) { p.Send(chatStateMsg(s)) })
	defer unsubChats()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	a.Logger.Debug("tui closed")
	return nil
}
