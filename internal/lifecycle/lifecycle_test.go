package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	fetched []string
	cleaned []string
	resets  int

	fetchErr   error
	cleanupErr error
	// release, when set, blocks cleanups until closed.
	release chan struct{}
}

func (r *recorder) FetchMessages(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetched = append(r.fetched, id)
	return r.fetchErr
}

func (r *recorder) ResetCurrent() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets++
}

func (r *recorder) CleanupChat(_ context.Context, id string) error {
	if r.release != nil {
		<-r.release
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleaned = append(r.cleaned, id)
	return r.cleanupErr
}

func (r *recorder) snapshot() (fetched, cleaned []string, resets int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.fetched...), append([]string(nil), r.cleaned...), r.resets
}

func TestNavigateAToB(t *testing.T) {
	r := &recorder{}
	c := New(r, r, nil)
	ctx := context.Background()

	require.NoError(t, c.Navigate(ctx, "A"))
	assert.Equal(t, Loaded, c.Phase())

	require.NoError(t, c.Navigate(ctx, "B"))
	c.Wait()

	fetched, cleaned, _ := r.snapshot()
	assert.Equal(t, []string{"A", "B"}, fetched)
	assert.Equal(t, []string{"A"}, cleaned)
	assert.Equal(t, "B", c.Key())
}

func TestNavigateToNoConversation(t *testing.T) {
	r := &recorder{}
	c := New(r, r, nil)
	ctx := context.Background()

	require.NoError(t, c.Navigate(ctx, "A"))
	require.NoError(t, c.Navigate(ctx, ""))
	c.Wait()

	fetched, cleaned, resets := r.snapshot()
	assert.Equal(t, []string{"A"}, fetched)
	assert.Equal(t, []string{"A"}, cleaned)
	assert.Equal(t, 1, resets)
	assert.Equal(t, Inactive, c.Phase())
	assert.Empty(t, c.Key())
}

func TestNavigateSameKeyIsNoop(t *testing.T) {
	r := &recorder{}
	c := New(r, r, nil)
	ctx := context.Background()

	require.NoError(t, c.Navigate(ctx, "A"))
	require.NoError(t, c.Navigate(ctx, "A"))
	require.NoError(t, c.Navigate(ctx, ""))
	require.NoError(t, c.Navigate(ctx, ""))
	c.Wait()

	fetched, cleaned, resets := r.snapshot()
	assert.Equal(t, []string{"A"}, fetched)
	assert.Equal(t, []string{"A"}, cleaned)
	assert.Equal(t, 1, resets)
}

func TestInitialEmptyKeyDoesNothing(t *testing.T) {
	r := &recorder{}
	c := New(r, r, nil)

	require.NoError(t, c.Navigate(context.Background(), ""))
	_, cleaned, resets := r.snapshot()
	assert.Empty(t, cleaned)
	assert.Zero(t, resets)
	assert.Equal(t, Inactive, c.Phase())
}

func TestNavigateDoesNotWaitForCleanup(t *testing.T) {
	r := &recorder{release: make(chan struct{})}
	c := New(r, r, nil)
	ctx := context.Background()

	require.NoError(t, c.Navigate(ctx, "A"))

	done := make(chan struct{})
	go func() {
		_ = c.Navigate(ctx, "B")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("navigate blocked on cleanup")
	}

	close(r.release)
	c.Wait()
	_, cleaned, _ := r.snapshot()
	assert.Equal(t, []string{"A"}, cleaned)
}

func TestFetchErrorIsReturnedAndSettles(t *testing.T) {
	r := &recorder{fetchErr: errors.New("boom")}
	c := New(r, r, nil)

	err := c.Navigate(context.Background(), "A")
	assert.EqualError(t, err, "boom")
	assert.Equal(t, Loaded, c.Phase())
}

func TestCleanupFailureIsLoggedOnly(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := &recorder{cleanupErr: errors.New("Error during chat cleanup")}
	c := New(r, r, logger)
	ctx := context.Background()

	require.NoError(t, c.Navigate(ctx, "A"))
	require.NoError(t, c.Navigate(ctx, "B"))
	c.Wait()

	assert.Contains(t, buf.String(), "chat cleanup failed")
	assert.Equal(t, "B", c.Key())
}

func TestReentryDuringCleanupIsDetected(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := &recorder{release: make(chan struct{})}
	c := New(r, r, logger)
	ctx := context.Background()

	require.NoError(t, c.Navigate(ctx, "A"))
	require.NoError(t, c.Navigate(ctx, "B"))
	require.NoError(t, c.Navigate(ctx, "A"))

	close(r.release)
	c.Wait()

	out := buf.String()
	assert.Contains(t, out, "cleanup superseded by re-entry")
	assert.Contains(t, out, "chat cleanup finished after re-entry")
}

func TestCloseCleansActiveConversation(t *testing.T) {
	r := &recorder{}
	c := New(r, r, nil)

	require.NoError(t, c.Navigate(context.Background(), "A"))
	c.Close()
	c.Wait()

	_, cleaned, _ := r.snapshot()
	assert.Equal(t, []string{"A"}, cleaned)
	assert.Equal(t, Inactive, c.Phase())

	c.Close()
	c.Wait()
	_, cleaned, _ = r.snapshot()
	assert.Len(t, cleaned, 1)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "inactive", Inactive.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "loaded", Loaded.String())
}
