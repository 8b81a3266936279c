package lifecycle_test

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/raphaelgruber/tenantchat/internal/chat"
	"github.com/raphaelgruber/tenantchat/internal/client"
	"github.com/raphaelgruber/tenantchat/internal/fakeapi"
	"github.com/raphaelgruber/tenantchat/internal/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*fakeapi.Server, *chat.Store, *lifecycle.Controller) {
	t.Helper()
	srv, base := fakeapi.Start(t)
	require.NoError(t, srv.SeedDemo())

	c, err := client.New(base)
	require.NoError(t, err)
	_, err = c.Login(context.Background(), client.Credentials{
		Domain: fakeapi.DemoDomain, Email: "a@acme.com", Password: fakeapi.DemoPassword,
	})
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	chats := chat.New(c, logger)
	return srv, chats, lifecycle.New(chats, c, logger)
}

func TestLeavingEmptyChatPrunesIt(t *testing.T) {
	srv, chats, ctl := setup(t)
	ctx := context.Background()

	a, err := chats.CreateChat(ctx, "")
	require.NoError(t, err)
	b, err := chats.CreateChat(ctx, "")
	require.NoError(t, err)

	require.NoError(t, ctl.Navigate(ctx, a))
	assert.Equal(t, a, chats.State().Current.ID)

	require.NoError(t, ctl.Navigate(ctx, b))
	ctl.Wait()
	assert.False(t, srv.ChatExists(a))
	assert.True(t, srv.ChatExists(b))
	assert.Equal(t, b, chats.State().Current.ID)
}

func TestLeavingUsedChatKeepsIt(t *testing.T) {
	srv, chats, ctl := setup(t)
	ctx := context.Background()

	a, err := chats.CreateChat(ctx, "")
	require.NoError(t, err)
	require.NoError(t, ctl.Navigate(ctx, a))
	require.NoError(t, chats.SendMessage(ctx, a, "keep me"))
	chats.Wait()

	require.NoError(t, ctl.Navigate(ctx, ""))
	ctl.Wait()

	assert.True(t, srv.ChatExists(a))
	assert.Equal(t, 2, srv.MessageCount(a))
	assert.Empty(t, chats.State().Current.ID)
	assert.Empty(t, chats.State().Current.Messages)
}

func TestCleanupFailureIsNotSurfaced(t *testing.T) {
	srv, chats, ctl := setup(t)
	ctx := context.Background()

	a, err := chats.CreateChat(ctx, "")
	require.NoError(t, err)
	require.NoError(t, ctl.Navigate(ctx, a))

	srv.FailNext(http.MethodPost, "/api/chats/:chat_id/cleanup", http.StatusInternalServerError, "cleanup exploded")
	require.NoError(t, ctl.Navigate(ctx, ""))
	ctl.Wait()

	assert.True(t, srv.ChatExists(a))
	assert.Empty(t, chats.State().Error)
}

func TestCloseCleansUpActiveChat(t *testing.T) {
	srv, chats, ctl := setup(t)
	ctx := context.Background()

	a, err := chats.CreateChat(ctx, "")
	require.NoError(t, err)
	require.NoError(t, ctl.Navigate(ctx, a))

	ctl.Close()
	ctl.Wait()
	assert.False(t, srv.ChatExists(a))

	var cleanups int
	for _, r := range srv.Requests() {
		if r.Route == "/api/chats/:chat_id/cleanup" {
			cleanups++
		}
	}
	assert.Equal(t, 1, cleanups)
}
