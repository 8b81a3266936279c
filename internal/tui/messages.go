package tui

import (
	"github.com/raphaelgruber/tenantchat/internal/chat"
	"github.com/raphaelgruber/tenantchat/internal/models"
)

// sessionMsg carries a new session state from the session store.
type sessionMsg models.Session

// chatStateMsg carries a new chat state from the chat store.
type chatStateMsg chat.State

// navigatedMsg reports that the lifecycle controller settled on a location.
type navigatedMsg struct {
	location string
	err      error
}

// createdMsg reports a newly created conversation.
type createdMsg struct {
	id  string
	err error
}

// doneMsg reports the end of an operation whose outcome shows up in store state.
type doneMsg struct {
	status string
	err    error
}
