// Package chat holds the conversation history and the open conversation,
// and the operations that keep them in sync with the server.
package chat

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/tenantchat/internal/client"
	"github.com/raphaelgruber/tenantchat/internal/models"
	"github.com/raphaelgruber/tenantchat/internal/store"
)

// API is the part of the REST client the chat store needs.
type API interface {
	ListChats(ctx context.Context) ([]models.ConversationSummary, error)
	CreateChat(ctx context.Context, title string) (*models.ConversationSummary, error)
	ListMessages(ctx context.Context, chatID string) ([]models.Message, error)
	SendMessage(ctx context.Context, chatID, content string) (*models.Message, error)
	RenameChat(ctx context.Context, chatID, title string) error
	DeleteChat(ctx context.Context, chatID string) error
	UploadDocument(ctx context.Context, chatID, filename string, r io.Reader, action models.DocumentAction) (*models.DocumentResult, error)
}

// Store owns the chat state. Every operation reports failures both through
// the returned error and the state's Error field.
type Store struct {
	api    API
	state  *store.Store[State]
	logger *slog.Logger

	// background tracks history refreshes started after a send.
	background sync.WaitGroup

	now    func() time.Time
	tempID func() string
}

// New creates an empty chat store.
func New(api API, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		api:    api,
		state:  store.New(initialState(), reduce, logger.With("store", "chat")),
		logger: logger,
		now:    time.Now,
		tempID: func() string { return models.TempIDPrefix + uuid.NewString() },
	}
}

// State returns the current chat state.
func (s *Store) State() State {
	return s.state.State()
}

// Subscribe registers fn for chat state changes.
func (s *Store) Subscribe(fn func(State)) func() {
	return s.state.Subscribe(fn)
}

// FetchHistory replaces the conversation list with the server's. On failure
// the previous list is kept.
func (s *Store) FetchHistory(ctx context.Context) error {
	s.state.Dispatch(historyRequested{})
	chats, err := s.api.ListChats(ctx)
	if err != nil {
		s.logger.Warn("fetch history failed", "error", err)
		s.state.Dispatch(historyFailed{message: client.Message(err)})
		return err
	}
	s.state.Dispatch(historyLoaded{chats: chats})
	return nil
}

// CreateChat creates a conversation, refreshes the history and returns the new id.
func (s *Store) CreateChat(ctx context.Context, title string) (string, error) {
	chat, err := s.api.CreateChat(ctx, strings.TrimSpace(title))
	if err != nil {
		s.logger.Warn("create chat failed", "error", err)
		s.state.Dispatch(operationFailed{message: client.Message(err)})
		return "", err
	}
	s.logger.Debug("chat created", "chat", chat.ID)

	// The refresh failure is already recorded in state; the chat exists either way.
	_ = s.FetchHistory(ctx)
	return chat.ID, nil
}

// FetchMessages opens chatID with the server's messages. Only the most recent
// fetch is applied; responses to earlier ones are dropped.
func (s *Store) FetchMessages(ctx context.Context, chatID string) error {
	seq := s.state.Dispatch(messagesRequested{chatID: chatID}).fetchSeq

	messages, err := s.api.ListMessages(ctx, chatID)
	if err != nil {
		s.logger.Warn("fetch messages failed", "chat", chatID, "error", err)
		s.state.Dispatch(messagesFailed{chatID: chatID, seq: seq, message: client.Message(err)})
		return err
	}

	st := s.state.Dispatch(messagesLoaded{chatID: chatID, seq: seq, messages: messages})
	if st.fetchSeq != seq {
		s.logger.Debug("stale messages dropped", "chat", chatID)
	}
	return nil
}

// RenameChat sets a conversation's title and patches the history entry.
func (s *Store) RenameChat(ctx context.Context, chatID, title string) error {
	title = strings.TrimSpace(title)
	if err := s.api.RenameChat(ctx, chatID, title); err != nil {
		s.logger.Warn("rename chat failed", "chat", chatID, "error", err)
		s.state.Dispatch(operationFailed{message: client.Message(err)})
		return err
	}
	s.state.Dispatch(chatRenamed{chatID: chatID, title: title})
	return nil
}

// DeleteChat deletes a conversation, removing it from the history and
// closing it if it is open.
func (s *Store) DeleteChat(ctx context.Context, chatID string) error {
	if err := s.api.DeleteChat(ctx, chatID); err != nil {
		s.logger.Warn("delete chat failed", "chat", chatID, "error", err)
		s.state.Dispatch(operationFailed{message: client.Message(err)})
		return err
	}
	s.state.Dispatch(chatDeleted{chatID: chatID})
	return nil
}

// UploadDocument sends a document to chatID for summarizing or extraction.
// The resulting user and assistant messages are appended when chatID is open.
func (s *Store) UploadDocument(ctx context.Context, chatID, filename string, r io.Reader, action models.DocumentAction) (*models.DocumentResult, error) {
	if chatID == "" {
		s.logger.Warn("upload ignored: no active chat")
		return nil, ErrNoActiveChat
	}

	s.state.Dispatch(uploadStarted{})
	result, err := s.api.UploadDocument(ctx, chatID, filename, r, action)
	if err != nil {
		s.logger.Warn("upload document failed", "chat", chatID, "file", filename, "error", err)
		s.state.Dispatch(sendFailed{message: client.Message(err)})
		return nil, err
	}
	s.state.Dispatch(documentProcessed{chatID: chatID, result: *result})
	return result, nil
}

// ResetCurrent closes the open conversation. Pending message fetches are dropped.
func (s *Store) ResetCurrent() {
	s.state.Dispatch(currentReset{})
}

// ClearError dismisses the recorded error.
func (s *Store) ClearError() {
	s.state.Dispatch(errorCleared{})
}

// Wait blocks until background history refreshes have finished.
func (s *Store) Wait() {
	s.background.Wait()
}
