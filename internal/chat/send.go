package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/raphaelgruber/tenantchat/internal/client"
	"github.com/raphaelgruber/tenantchat/internal/models"
)

var (
	// ErrNoActiveChat is returned when a send has no conversation to go to.
	ErrNoActiveChat = errors.New("no active chat")
	// ErrEmptyMessage is returned when the content is blank.
	ErrEmptyMessage = errors.New("message is empty")
)

// SendMessage appends content to chatID as an optimistic user message, sends
// it, and appends the assistant's reply. IsComposing is set for the duration
// of the request. A failed send keeps the optimistic message and records the
// error. On success the history is refreshed in the background because the
// server may have retitled the conversation.
//
// The store does not reject a send while another is in flight; front ends
// disable their input while IsComposing is set.
func (s *Store) SendMessage(ctx context.Context, chatID, content string) error {
	content = strings.TrimSpace(content)
	if chatID == "" {
		s.logger.Warn("send ignored: no active chat")
		return ErrNoActiveChat
	}
	if content == "" {
		s.logger.Warn("send ignored: empty message", "chat", chatID)
		return ErrEmptyMessage
	}

	s.state.Dispatch(composeStarted{
		chatID: chatID,
		pending: models.Message{
			ID:        s.tempID(),
			ChatID:    chatID,
			Role:      models.RoleUser,
			Content:   content,
			Timestamp: s.now().UTC(),
		},
	})

	reply, err := s.api.SendMessage(ctx, chatID, content)
	if err != nil {
		s.logger.Warn("send message failed", "chat", chatID, "error", err)
		s.state.Dispatch(sendFailed{message: client.Message(err)})
		return err
	}

	s.state.Dispatch(replyReceived{chatID: chatID, reply: *reply})
	s.logger.Debug("reply received", "chat", chatID, "response_time", reply.ResponseTime)

	refreshCtx := context.WithoutCancel(ctx)
	s.background.Go(func() {
		_ = s.FetchHistory(refreshCtx)
	})
	return nil
}
