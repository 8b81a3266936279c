package chat

import (
	"slices"

	"github.com/raphaelgruber/tenantchat/internal/models"
	"github.com/raphaelgruber/tenantchat/internal/store"
)

// State is the chat state held by the Store.
type State struct {
	History      []models.ConversationSummary `json:"history"`
	Current      models.Conversation          `json:"current"`
	Loading      bool                         `json:"loading"`
	IsComposing  bool                         `json:"is_composing"`
	Error        string                       `json:"error,omitempty"`
	LastDocument *models.DocumentResult       `json:"last_document,omitempty"`

	// loads counts in-flight history and message fetches.
	loads int
	// fetchSeq identifies the latest message fetch; older responses are dropped.
	fetchSeq uint64
}

func initialState() State {
	return State{
		History: []models.ConversationSummary{},
		Current: models.EmptyConversation(),
	}
}

type historyRequested struct{}

type historyLoaded struct{ chats []models.ConversationSummary }

type historyFailed struct{ message string }

type messagesRequested struct{ chatID string }

type messagesLoaded struct {
	chatID   string
	seq      uint64
	messages []models.Message
}

type messagesFailed struct {
	chatID  string
	seq     uint64
	message string
}

type currentReset struct{}

type composeStarted struct {
	chatID  string
	pending models.Message
}

type replyReceived struct {
	chatID string
	reply  models.Message
}

type sendFailed struct{ message string }

type uploadStarted struct{}

type documentProcessed struct {
	chatID string
	result models.DocumentResult
}

type chatRenamed struct{ chatID, title string }

type chatDeleted struct{ chatID string }

type operationFailed struct{ message string }

type errorCleared struct{}

func (historyRequested) Type() string  { return "chat/fetchHistory/pending" }
func (historyLoaded) Type() string     { return "chat/fetchHistory/fulfilled" }
func (historyFailed) Type() string     { return "chat/fetchHistory/rejected" }
func (messagesRequested) Type() string { return "chat/fetchMessages/pending" }
func (messagesLoaded) Type() string    { return "chat/fetchMessages/fulfilled" }
func (messagesFailed) Type() string    { return "chat/fetchMessages/rejected" }
func (currentReset) Type() string      { return "chat/resetCurrent" }
func (composeStarted) Type() string    { return "chat/sendMessage/pending" }
func (replyReceived) Type() string     { return "chat/sendMessage/fulfilled" }
func (sendFailed) Type() string        { return "chat/sendMessage/rejected" }
func (uploadStarted) Type() string     { return "chat/uploadDocument/pending" }
func (documentProcessed) Type() string { return "chat/uploadDocument/fulfilled" }
func (chatRenamed) Type() string       { return "chat/renameChat/fulfilled" }
func (chatDeleted) Type() string       { return "chat/deleteChat/fulfilled" }
func (operationFailed) Type() string   { return "chat/rejected" }
func (errorCleared) Type() string      { return "chat/clearError" }

// reduce is the chat reducer. Slices in the incoming state are shared with
// earlier snapshots, so every change builds a new slice.
func reduce(s State, action store.Action) State {
	switch a := action.(type) {
	case historyRequested:
		s.loads++
	case historyLoaded:
		s.loads--
		s.History = a.chats
		if s.History == nil {
			s.History = []models.ConversationSummary{}
		}
	case historyFailed:
		s.loads--
		s.Error = a.message

	case messagesRequested:
		s.loads++
		s.fetchSeq++
	case messagesLoaded:
		s.loads--
		if a.seq == s.fetchSeq {
			s.Current = models.Conversation{
				ID:       a.chatID,
				Title:    titleOf(s.History, a.chatID),
				Messages: nonNil(a.messages),
			}
		}
	case messagesFailed:
		s.loads--
		if a.seq == s.fetchSeq {
			s.Current = models.Conversation{ID: a.chatID, Title: titleOf(s.History, a.chatID), Messages: []models.Message{}}
			s.Error = a.message
		}
	case currentReset:
		s.fetchSeq++
		s.Current = models.EmptyConversation()

	case composeStarted:
		if s.Current.ID == a.chatID {
			s.Current.Messages = appendMessages(s.Current.Messages, a.pending)
		}
		s.IsComposing = true
		s.Error = ""
	case replyReceived:
		if s.Current.ID == a.chatID {
			s.Current.Messages = appendMessages(s.Current.Messages, a.reply)
		}
		s.IsComposing = false
	case sendFailed:
		s.IsComposing = false
		s.Error = a.message

	case uploadStarted:
		s.IsComposing = true
		s.Error = ""
	case documentProcessed:
		if s.Current.ID == a.chatID {
			s.Current.Messages = appendMessages(s.Current.Messages, a.result.UserMessage, a.result.AIMessage)
		}
		result := a.result
		s.LastDocument = &result
		s.IsComposing = false

	case chatRenamed:
		s.History = slices.Clone(s.History)
		for i := range s.History {
			if s.History[i].ID == a.chatID {
				s.History[i].Title = a.title
			}
		}
		if s.Current.ID == a.chatID {
			s.Current.Title = a.title
		}
	case chatDeleted:
		s.History = slices.DeleteFunc(slices.Clone(s.History), func(c models.ConversationSummary) bool {
			return c.ID == a.chatID
		})
		if s.Current.ID == a.chatID {
			s.fetchSeq++
			s.Current = models.EmptyConversation()
		}

	case operationFailed:
		s.Error = a.message
	case errorCleared:
		s.Error = ""
	}

	s.Loading = s.loads > 0
	return s
}

func appendMessages(list []models.Message, msgs ...models.Message) []models.Message {
	out := make([]models.Message, 0, len(list)+len(msgs))
	out = append(out, list...)
	return append(out, msgs...)
}

func titleOf(history []models.ConversationSummary, id string) string {
	for _, c := range history {
		if c.ID == id {
			return c.Title
		}
	}
	return ""
}

func nonNil(msgs []models.Message) []models.Message {
	if msgs == nil {
		return []models.Message{}
	}
	return msgs
}
