package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/raphaelgruber/tenantchat/internal/fakeapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupCLI points the CLI at a seeded fake API with a private state directory.
func setupCLI(t *testing.T) *fakeapi.Server {
	t.Helper()
	srv, base := fakeapi.Start(t)
	require.NoError(t, srv.SeedDemo())

	dir := t.TempDir()
	t.Setenv("TENANTCHAT_API_URL", base)
	t.Setenv("TENANTCHAT_STATE_DIR", dir)
	t.Setenv("TENANTCHAT_LOG_FILE", filepath.Join(dir, "tenantchat.log"))
	t.Setenv("TENANTCHAT_STDERR_LOG_LEVEL", "ERROR")
	return srv
}

// run executes one CLI invocation and returns its combined output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := Execute()

	// Flag variables outlive a single Execute
	loginDomain, loginEmail, loginPassword = "", "", ""
	sendNew, sendTitle = false, ""
	return out.String(), err
}

func TestSessionAcrossInvocations(t *testing.T) {
	setupCLI(t)

	_, err := run(t, "whoami")
	require.ErrorIs(t, err, errNotLoggedIn)

	out, err := run(t, "login", "-d", "acme", "-e", "a@acme.com", "-p", fakeapi.DemoPassword)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Alex Employee")

	out, err = run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "a@acme.com")
	assert.Contains(t, out, "employee")

	out, err = run(t, "login", "-p", fakeapi.DemoPassword)
	require.NoError(t, err)
	assert.Contains(t, out, "Already logged in")

	out, err = run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out.")

	_, err = run(t, "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestLoginRemembersIdentity(t *testing.T) {
	setupCLI(t)

	_, err := run(t, "login", "-d", "acme", "-e", "a@acme.com", "-p", fakeapi.DemoPassword)
	require.NoError(t, err)
	_, err = run(t, "logout")
	require.NoError(t, err)

	out, err := run(t, "login", "-p", fakeapi.DemoPassword)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Alex Employee")
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	setupCLI(t)

	_, err := run(t, "login", "-d", "acme", "-e", "a@acme.com", "-p", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email or password")
}

func TestSendAndList(t *testing.T) {
	srv := setupCLI(t)

	_, err := run(t, "login", "-d", "acme", "-e", "a@acme.com", "-p", fakeapi.DemoPassword)
	require.NoError(t, err)

	out, err := run(t, "send", "--new", "hello there")
	require.NoError(t, err)
	assert.Contains(t, out, "You said: hello there")

	out, err = run(t, "chats")
	require.NoError(t, err)
	assert.Contains(t, out, "Conversations (1)")
	assert.Contains(t, out, "hello there")

	_, err = run(t, "send", "hello again")
	assert.Error(t, err)

	out, err = run(t, "chats", "new")
	require.NoError(t, err)
	assert.Contains(t, out, "Created conversation")

	creates := 0
	for _, r := range srv.Requests() {
		if r.Method == "POST" && r.Route == "/api/chats" {
			creates++
		}
	}
	assert.Equal(t, 2, creates)
}

func TestAdminRequiresPermission(t *testing.T) {
	setupCLI(t)

	_, err := run(t, "login", "-d", "acme", "-e", "a@acme.com", "-p", fakeapi.DemoPassword)
	require.NoError(t, err)

	_, err = run(t, "admin", "users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "view:users")

	_, err = run(t, "logout")
	require.NoError(t, err)
	_, err = run(t, "login", "-d", "acme", "-e", "admin@acme.com", "-p", fakeapi.DemoPassword)
	require.NoError(t, err)

	out, err := run(t, "admin", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "a@acme.com")
}

func TestStatsForOneEndpoint(t *testing.T) {
	setupCLI(t)

	_, err := run(t, "login", "-d", "acme", "-e", "a@acme.com", "-p", fakeapi.DemoPassword)
	require.NoError(t, err)

	out, err := run(t, "stats", "GET /chats")
	require.NoError(t, err)
	assert.Contains(t, out, "Chats:    0")
	assert.Contains(t, out, "Requests: 1 (0 failed)")

	out, err = run(t, "stats", "POST /nowhere")
	require.NoError(t, err)
	assert.Contains(t, out, "No requests to POST /nowhere.")
}
