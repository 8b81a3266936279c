package client_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/raphaelgruber/tenantchat/internal/client"
	"github.com/raphaelgruber/tenantchat/internal/fakeapi"
	"github.com/raphaelgruber/tenantchat/internal/metrics"
	"github.com/raphaelgruber/tenantchat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loggedIn(t *testing.T, email string, opts ...client.Option) (*fakeapi.Server, *client.Client) {
	t.Helper()
	srv, base := fakeapi.Start(t)
	require.NoError(t, srv.SeedDemo())

	domain := fakeapi.DemoDomain
	if strings.HasSuffix(email, "@platform.local") {
		domain = fakeapi.PlatformDomain
	}
	c, err := client.New(base, opts...)
	require.NoError(t, err)
	_, err = c.Login(context.Background(), client.Credentials{Domain: domain, Email: email, Password: fakeapi.DemoPassword})
	require.NoError(t, err)
	return srv, c
}

func TestNewRejectsRelativeURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"absolute", "http://localhost:8080/api", false},
		{"trailing slash", "http://localhost:8080/api/", false},
		{"no scheme", "localhost:8080/api", true},
		{"path only", "/api", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := client.New(tt.baseURL)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "http://localhost:8080/api", c.BaseURL().String())
		})
	}
}

func TestLoginAndMe(t *testing.T) {
	srv, base := fakeapi.Start(t)
	require.NoError(t, srv.SeedDemo())
	c, err := client.New(base)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Me(ctx)
	assert.True(t, client.IsUnauthorized(err))

	result, err := c.Login(ctx, client.Credentials{Domain: "acme", Email: "admin@acme.com", Password: "secret"})
	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.Equal(t, "company_admin", result.Role)
	assert.NotEmpty(t, result.Company)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alice Admin", me.Name)
	assert.Equal(t, result.Company, me.CompanyID)

	require.NoError(t, c.Logout(ctx))
	_, err = c.Me(ctx)
	assert.True(t, client.IsUnauthorized(err))
}

func TestLoginErrorCarriesServerMessage(t *testing.T) {
	srv, base := fakeapi.Start(t)
	require.NoError(t, srv.SeedDemo())
	c, err := client.New(base)
	require.NoError(t, err)

	_, err = c.Login(context.Background(), client.Credentials{Domain: "acme", Email: "a@acme.com", Password: "nope"})
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid email or password", client.Message(err))
}

func TestChatLifecycle(t *testing.T) {
	srv, c := loggedIn(t, "a@acme.com")
	ctx := context.Background()

	chats, err := c.ListChats(ctx)
	require.NoError(t, err)
	assert.NotNil(t, chats)
	assert.Empty(t, chats)

	chat, err := c.CreateChat(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "New Chat", chat.Title)

	reply, err := c.SendMessage(ctx, chat.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAssistant, reply.Role)
	assert.Equal(t, "You said: hello", reply.Content)

	messages, err := c.ListMessages(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hello", messages[0].Content)

	require.NoError(t, c.RenameChat(ctx, chat.ID, "Greetings"))
	chats, err = c.ListChats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "Greetings", chats[0].Title)

	// cleanup keeps a chat with messages
	require.NoError(t, c.CleanupChat(ctx, chat.ID))
	assert.True(t, srv.ChatExists(chat.ID))

	require.NoError(t, c.DeleteChat(ctx, chat.ID))
	assert.False(t, srv.ChatExists(chat.ID))

	err = c.DeleteChat(ctx, chat.ID)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Chat not found", apiErr.Message)
}

func TestCleanupEmptyChat(t *testing.T) {
	srv, c := loggedIn(t, "a@acme.com")
	ctx := context.Background()

	chat, err := c.CreateChat(ctx, "scratch")
	require.NoError(t, err)

	require.NoError(t, c.CleanupChat(ctx, chat.ID))
	assert.False(t, srv.ChatExists(chat.ID))
	require.NoError(t, c.CleanupChat(ctx, chat.ID))
}

func TestUploadDocument(t *testing.T) {
	_, c := loggedIn(t, "a@acme.com")
	ctx := context.Background()
	chat, err := c.CreateChat(ctx, "")
	require.NoError(t, err)

	result, err := c.UploadDocument(ctx, chat.ID, "plan.txt", strings.NewReader("ship the client first"), "")
	require.NoError(t, err)
	assert.Equal(t, "Uploaded document: plan.txt (Action: summarize)", result.UserMessage.Content)
	assert.Equal(t, models.RoleAssistant, result.AIMessage.Role)
	assert.Equal(t, int64(len("ship the client first")), result.Attachment.Size)

	_, err = c.UploadDocument(ctx, chat.ID, "plan.txt", strings.NewReader("x"), "translate")
	assert.ErrorContains(t, err, "unknown action")

	_, err = c.UploadDocument(ctx, chat.ID, "big.bin", bytes.NewReader(make([]byte, client.MaxDocumentSize+1)), models.DocumentExtract)
	assert.ErrorContains(t, err, "10MB")
}

func TestAdminEndpoints(t *testing.T) {
	_, c := loggedIn(t, "admin@acme.com")
	ctx := context.Background()

	roles, err := c.ListRoles(ctx)
	require.NoError(t, err)
	var employeeRole string
	for _, r := range roles {
		if r.Name == "employee" {
			employeeRole = r.ID
		}
	}
	require.NotEmpty(t, employeeRole)

	user, err := c.CreateUser(ctx, client.CreateUserInput{
		Name: "Bob", Email: "bob@acme.com", Password: "pw", RoleID: employeeRole, IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "employee", user.RoleName)

	page, err := c.ListUsers(ctx, client.ListOptions{Search: "bob"})
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.EqualValues(t, 1, page.Total)

	require.NoError(t, c.UpdateUser(ctx, user.ID, client.UpdateUserInput{Department: "Sales"}))
	require.NoError(t, c.DeactivateUser(ctx, user.ID))

	page, err = c.ListUsers(ctx, client.ListOptions{Search: "bob"})
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.False(t, page.Users[0].IsActive)
	assert.Equal(t, "Sales", page.Users[0].Department)

	logs, err := c.ListActivityLogs(ctx, client.ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, logs.Logs, 2)
	assert.Equal(t, 2, logs.Limit)

	_, err = c.ListCompanies(ctx, client.ListOptions{})
	assert.True(t, client.IsForbidden(err))
}

func TestCompanyAdministration(t *testing.T) {
	_, c := loggedIn(t, "root@platform.local")
	ctx := context.Background()

	company, err := c.CreateCompany(ctx, client.CreateCompanyInput{
		CompanyName: "Globex", Domain: "globex", Email: "info@globex.com",
		AdminName: "Hank", AdminEmail: "hank@globex.com", AdminPassword: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, "globex", company.Domain)
	assert.True(t, company.IsActive)

	page, err := c.ListCompanies(ctx, client.ListOptions{Search: "glob"})
	require.NoError(t, err)
	require.Len(t, page.Companies, 1)

	hank, err := client.New(c.BaseURL().String())
	require.NoError(t, err)
	_, err = hank.Login(ctx, client.Credentials{Domain: "globex", Email: "hank@globex.com", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, c.DeactivateCompany(ctx, company.ID))
	_, err = hank.Me(ctx)
	assert.True(t, client.IsUnauthorized(err))
}

func TestNonEnvelopeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	t.Cleanup(ts.Close)

	c, err := client.New(ts.URL)
	require.NoError(t, err)

	_, err = c.ListChats(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream exploded", apiErr.Message)
}

func TestSuccessFalseIsAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"message":"quota exceeded","data":null}`))
	}))
	t.Cleanup(ts.Close)

	c, err := client.New(ts.URL)
	require.NoError(t, err)

	_, err = c.SendMessage(context.Background(), "c1", "hi")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.Status)
	assert.Equal(t, "quota exceeded", client.Message(err))
}

func TestRequestsAreMeasured(t *testing.T) {
	m := metrics.NewCollector()
	srv, c := loggedIn(t, "a@acme.com", client.WithMetrics(m))
	srv.FailNext(http.MethodGet, "/api/chats", http.StatusInternalServerError, "boom")

	_, err := c.ListChats(context.Background())
	require.Error(t, err)
	_, err = c.ListChats(context.Background())
	require.NoError(t, err)

	login := m.Operation("POST /auth/login")
	require.NotNil(t, login)
	assert.EqualValues(t, 1, login.Count)

	list := m.Operation("GET /chats")
	require.NotNil(t, list)
	assert.EqualValues(t, 2, list.Count)
	assert.EqualValues(t, 1, list.Failures)
}

func TestMeWithoutUserIsAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":null}`))
	}))
	t.Cleanup(ts.Close)

	c, err := client.New(ts.URL)
	require.NoError(t, err)

	user, err := c.Me(context.Background())
	assert.ErrorIs(t, err, client.ErrNoIdentity)
	assert.Nil(t, user)

	result, err := c.Login(context.Background(), client.Credentials{Domain: "acme", Email: "a@acme.com", Password: "x"})
	require.NoError(t, err)
	assert.Nil(t, result.User)
}

func TestChatIDsAreEscapedOnce(t *testing.T) {
	srv, c := loggedIn(t, "a@acme.com")

	_, err := c.ListMessages(context.Background(), "a b")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	var paths []string
	for _, r := range srv.Requests() {
		paths = append(paths, r.Path)
	}
	assert.Contains(t, paths, "/api/chats/a b/messages")
}
