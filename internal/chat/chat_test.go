package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/raphaelgruber/tenantchat/internal/client"
	"github.com/raphaelgruber/tenantchat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory chat backend. fail maps an operation name to the
// error it returns next; gate, when set, blocks ListMessages for a chat until
// the channel is closed.
type fakeAPI struct {
	mu       sync.Mutex
	nextID   int
	chats    []models.ConversationSummary
	messages map[string][]models.Message
	fail     map[string]error
	gate     map[string]chan struct{}
	cleaned  []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		messages: make(map[string][]models.Message),
		fail:     make(map[string]error),
		gate:     make(map[string]chan struct{}),
	}
}

func (f *fakeAPI) failNext(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

func (f *fakeAPI) takeErr(op string) error {
	err := f.fail[op]
	delete(f.fail, op)
	return err
}

func (f *fakeAPI) ListChats(context.Context) ([]models.ConversationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr("list"); err != nil {
		return nil, err
	}
	return append([]models.ConversationSummary{}, f.chats...), nil
}

func (f *fakeAPI) CreateChat(_ context.Context, title string) (*models.ConversationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr("create"); err != nil {
		return nil, err
	}
	f.nextID++
	if title == "" {
		title = "New Chat"
	}
	c := models.ConversationSummary{ID: fmt.Sprintf("c%d", f.nextID), Title: title}
	f.chats = append([]models.ConversationSummary{c}, f.chats...)
	return &c, nil
}

func (f *fakeAPI) ListMessages(_ context.Context, chatID string) ([]models.Message, error) {
	f.mu.Lock()
	gate := f.gate[chatID]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr("messages"); err != nil {
		return nil, err
	}
	return append([]models.Message{}, f.messages[chatID]...), nil
}

func (f *fakeAPI) SendMessage(_ context.Context, chatID, content string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr("send"); err != nil {
		return nil, err
	}
	if len(f.messages[chatID]) == 0 {
		for i := range f.chats {
			if f.chats[i].ID == chatID {
				f.chats[i].Title = content
			}
		}
	}
	f.nextID++
	user := models.Message{ID: fmt.Sprintf("m%d", f.nextID), ChatID: chatID, Role: models.RoleUser, Content: content}
	f.nextID++
	reply := models.Message{ID: fmt.Sprintf("m%d", f.nextID), ChatID: chatID, Role: models.RoleAssistant, Content: "echo: " + content}
	f.messages[chatID] = append(f.messages[chatID], user, reply)
	return &reply, nil
}

func (f *fakeAPI) RenameChat(_ context.Context, chatID, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.takeErr("rename")
}

func (f *fakeAPI) DeleteChat(_ context.Context, chatID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr("delete"); err != nil {
		return err
	}
	for i, c := range f.chats {
		if c.ID == chatID {
			f.chats = append(f.chats[:i:i], f.chats[i+1:]...)
			break
		}
	}
	delete(f.messages, chatID)
	return nil
}

func (f *fakeAPI) UploadDocument(_ context.Context, chatID, filename string, r io.Reader, action models.DocumentAction) (*models.DocumentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr("upload"); err != nil {
		return nil, err
	}
	data, _ := io.ReadAll(r)
	att := models.Attachment{ID: "a1", Filename: filename, Size: int64(len(data)), ProcessedData: "summary"}
	return &models.DocumentResult{
		UserMessage: models.Message{ID: "du", Role: models.RoleUser, Content: "Uploaded document: " + filename, Attachments: []models.Attachment{att}},
		AIMessage:   models.Message{ID: "da", Role: models.RoleAssistant, Content: "summary"},
		Attachment:  att,
	}, nil
}

func seeded(t *testing.T) (*Store, *fakeAPI) {
	t.Helper()
	api := newFakeAPI()
	api.chats = []models.ConversationSummary{{ID: "c1", Title: "First"}, {ID: "c2", Title: "Second"}}
	api.messages["c1"] = []models.Message{
		{ID: "m1", Role: models.RoleUser, Content: "hi"},
		{ID: "m2", Role: models.RoleAssistant, Content: "hello"},
	}
	s := New(api, nil)
	require.NoError(t, s.FetchHistory(context.Background()))
	return s, api
}

func TestNewIsEmpty(t *testing.T) {
	st := New(newFakeAPI(), nil).State()
	assert.Empty(t, st.History)
	assert.Equal(t, models.EmptyConversation(), st.Current)
	assert.False(t, st.Loading)
	assert.False(t, st.IsComposing)
}

func TestFetchHistoryFailureKeepsList(t *testing.T) {
	s, api := seeded(t)
	before := s.State().History

	for range 3 {
		api.failNext("list", &client.APIError{Status: 500, Message: "Failed to fetch chats"})
		err := s.FetchHistory(context.Background())
		require.Error(t, err)

		st := s.State()
		assert.Equal(t, before, st.History)
		assert.Equal(t, "Failed to fetch chats", st.Error)
		assert.False(t, st.Loading)
	}
}

func TestCreateChatAppearsInHistory(t *testing.T) {
	s, _ := seeded(t)

	id, err := s.CreateChat(context.Background(), "  ")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	ids := func() []string {
		var out []string
		for _, c := range s.State().History {
			out = append(out, c.ID)
		}
		return out
	}
	assert.Contains(t, ids(), id)

	require.NoError(t, s.FetchHistory(context.Background()))
	assert.Contains(t, ids(), id)
}

func TestCreateChatFailure(t *testing.T) {
	s, api := seeded(t)
	api.failNext("create", errors.New("connection refused"))

	id, err := s.CreateChat(context.Background(), "x")
	assert.Error(t, err)
	assert.Empty(t, id)
	assert.Equal(t, "connection refused", s.State().Error)
	assert.Len(t, s.State().History, 2)
}

func TestFetchMessages(t *testing.T) {
	s, _ := seeded(t)

	require.NoError(t, s.FetchMessages(context.Background(), "c1"))
	st := s.State()
	assert.Equal(t, "c1", st.Current.ID)
	assert.Equal(t, "First", st.Current.Title)
	assert.Len(t, st.Current.Messages, 2)
	assert.False(t, st.Loading)

	require.NoError(t, s.FetchMessages(context.Background(), "c2"))
	assert.Equal(t, "c2", s.State().Current.ID)
	assert.NotNil(t, s.State().Current.Messages)
	assert.Empty(t, s.State().Current.Messages)
}

func TestFetchMessagesFailureClearsMessages(t *testing.T) {
	s, api := seeded(t)
	require.NoError(t, s.FetchMessages(context.Background(), "c1"))

	api.failNext("messages", &client.APIError{Status: 500, Message: "Failed to fetch messages"})
	require.Error(t, s.FetchMessages(context.Background(), "c1"))

	st := s.State()
	assert.Equal(t, "c1", st.Current.ID)
	assert.Empty(t, st.Current.Messages)
	assert.Equal(t, "Failed to fetch messages", st.Error)
}

func TestFetchMessagesDropsStaleResponse(t *testing.T) {
	s, api := seeded(t)
	gate := make(chan struct{})
	api.gate["c1"] = gate

	done := make(chan error, 1)
	go func() { done <- s.FetchMessages(context.Background(), "c1") }()

	require.Eventually(t, func() bool { return s.State().Loading }, time.Second, time.Millisecond)
	require.NoError(t, s.FetchMessages(context.Background(), "c2"))
	close(gate)
	require.NoError(t, <-done)

	st := s.State()
	assert.Equal(t, "c2", st.Current.ID)
	assert.Empty(t, st.Current.Messages)
	assert.False(t, st.Loading)
}

func TestResetCurrentDropsPendingFetch(t *testing.T) {
	s, api := seeded(t)
	gate := make(chan struct{})
	api.gate["c1"] = gate

	done := make(chan error, 1)
	go func() { done <- s.FetchMessages(context.Background(), "c1") }()
	require.Eventually(t, func() bool { return s.State().Loading }, time.Second, time.Millisecond)

	s.ResetCurrent()
	close(gate)
	require.NoError(t, <-done)

	assert.Equal(t, models.EmptyConversation(), s.State().Current)
}

func TestSendMessageSuccess(t *testing.T) {
	s, _ := seeded(t)
	require.NoError(t, s.FetchMessages(context.Background(), "c1"))

	before := s.State()
	require.False(t, before.IsComposing)

	var composing []bool
	unsubscribe := s.Subscribe(func(st State) { composing = append(composing, st.IsComposing) })
	require.NoError(t, s.SendMessage(context.Background(), "c1", "  what's new?  "))
	unsubscribe()
	s.Wait()

	st := s.State()
	require.Len(t, st.Current.Messages, len(before.Current.Messages)+2)
	assert.False(t, st.IsComposing)
	assert.Equal(t, []bool{true, false}, composing[:2])

	optimistic := st.Current.Messages[len(st.Current.Messages)-2]
	assert.True(t, optimistic.IsOptimistic())
	assert.Equal(t, models.RoleUser, optimistic.Role)
	assert.Equal(t, "what's new?", optimistic.Content)

	reply := st.Current.Messages[len(st.Current.Messages)-1]
	assert.Equal(t, models.RoleAssistant, reply.Role)
	assert.Equal(t, "echo: what's new?", reply.Content)
}

func TestSendMessageRefreshesHistory(t *testing.T) {
	s, _ := seeded(t)
	require.NoError(t, s.FetchMessages(context.Background(), "c2"))

	require.NoError(t, s.SendMessage(context.Background(), "c2", "Plan the offsite"))
	s.Wait()

	assert.Equal(t, "Plan the offsite", titleOf(s.State().History, "c2"))
}

func TestSendMessageFailureKeepsOptimisticMessage(t *testing.T) {
	s, api := seeded(t)
	require.NoError(t, s.FetchMessages(context.Background(), "c1"))
	before := len(s.State().Current.Messages)

	api.failNext("send", &client.APIError{Status: 500, Message: "Failed to get response from AI"})
	err := s.SendMessage(context.Background(), "c1", "hello?")
	require.Error(t, err)
	s.Wait()

	st := s.State()
	require.Len(t, st.Current.Messages, before+1)
	assert.True(t, st.Current.Messages[before].IsOptimistic())
	assert.False(t, st.IsComposing)
	assert.Equal(t, "Failed to get response from AI", st.Error)
}

func TestSendMessagePreconditions(t *testing.T) {
	s, _ := seeded(t)
	require.NoError(t, s.FetchMessages(context.Background(), "c1"))
	before := s.State()

	assert.ErrorIs(t, s.SendMessage(context.Background(), "", "hi"), ErrNoActiveChat)
	assert.ErrorIs(t, s.SendMessage(context.Background(), "c1", " \n\t "), ErrEmptyMessage)

	assert.Equal(t, before, s.State())
}

func TestSendMessageClearsPreviousError(t *testing.T) {
	s, api := seeded(t)
	require.NoError(t, s.FetchMessages(context.Background(), "c1"))
	api.failNext("send", errors.New("timeout"))
	require.Error(t, s.SendMessage(context.Background(), "c1", "one"))

	require.NoError(t, s.SendMessage(context.Background(), "c1", "two"))
	s.Wait()
	assert.Empty(t, s.State().Error)
}

func TestSendToOtherChatDoesNotTouchOpenConversation(t *testing.T) {
	s, _ := seeded(t)
	require.NoError(t, s.FetchMessages(context.Background(), "c1"))
	before := s.State().Current

	require.NoError(t, s.SendMessage(context.Background(), "c2", "elsewhere"))
	s.Wait()

	assert.Equal(t, before, s.State().Current)
}

func TestDeleteOpenChatResetsCurrent(t *testing.T) {
	s, _ := seeded(t)
	require.NoError(t, s.FetchMessages(context.Background(), "c1"))

	require.NoError(t, s.DeleteChat(context.Background(), "c1"))

	st := s.State()
	assert.Equal(t, models.Conversation{ID: "", Title: "", Messages: []models.Message{}}, st.Current)
	for _, c := range st.History {
		assert.NotEqual(t, "c1", c.ID)
	}
	assert.Len(t, st.History, 1)
}

func TestDeleteOtherChatKeepsCurrent(t *testing.T) {
	s, _ := seeded(t)
	require.NoError(t, s.FetchMessages(context.Background(), "c1"))

	require.NoError(t, s.DeleteChat(context.Background(), "c2"))
	assert.Equal(t, "c1", s.State().Current.ID)
	assert.Len(t, s.State().History, 1)
}

func TestDeleteChatFailure(t *testing.T) {
	s, api := seeded(t)
	api.failNext("delete", &client.APIError{Status: 403, Message: "Unauthorized to delete this chat"})

	require.Error(t, s.DeleteChat(context.Background(), "c1"))
	assert.Len(t, s.State().History, 2)
	assert.Equal(t, "Unauthorized to delete this chat", s.State().Error)
}

func TestRenameChatPatchesHistory(t *testing.T) {
	s, _ := seeded(t)
	require.NoError(t, s.FetchMessages(context.Background(), "c1"))
	history := s.State().History

	require.NoError(t, s.RenameChat(context.Background(), "c1", " Renamed "))

	st := s.State()
	assert.Equal(t, "Renamed", titleOf(st.History, "c1"))
	assert.Equal(t, "Renamed", st.Current.Title)
	assert.Equal(t, "First", titleOf(history, "c1"), "earlier snapshot must not change")
}

func TestUploadDocument(t *testing.T) {
	s, _ := seeded(t)
	require.NoError(t, s.FetchMessages(context.Background(), "c1"))
	before := len(s.State().Current.Messages)

	result, err := s.UploadDocument(context.Background(), "c1", "notes.txt", strings.NewReader("body"), models.DocumentSummarize)
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.Attachment.Size)

	st := s.State()
	assert.Len(t, st.Current.Messages, before+2)
	assert.False(t, st.IsComposing)
	require.NotNil(t, st.LastDocument)
	assert.Equal(t, "notes.txt", st.LastDocument.Attachment.Filename)

	_, err = s.UploadDocument(context.Background(), "", "x", strings.NewReader(""), models.DocumentExtract)
	assert.ErrorIs(t, err, ErrNoActiveChat)
}

func TestClearError(t *testing.T) {
	s, api := seeded(t)
	api.failNext("list", errors.New("boom"))
	require.Error(t, s.FetchHistory(context.Background()))
	require.NotEmpty(t, s.State().Error)

	s.ClearError()
	assert.Empty(t, s.State().Error)
}
