// Package lifecycle binds the open conversation to the active location:
// entering a conversation loads it, leaving one asks the server to prune it
// if it was never used.
package lifecycle

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Phase is the state of the conversation slot.
type Phase int

const (
	// Inactive means no conversation location is active.
	Inactive Phase = iota
	// Loading means the active conversation's messages are being fetched.
	Loading
	// Loaded means the fetch for the active conversation has settled.
	Loaded
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "inactive"
	}
}

// DefaultCleanupTimeout bounds a detached cleanup request.
const DefaultCleanupTimeout = 15 * time.Second

// Loader opens and closes conversations in the chat store.
type Loader interface {
	FetchMessages(ctx context.Context, chatID string) error
	ResetCurrent()
}

// Cleaner asks the server to delete a conversation if it has no messages.
type Cleaner interface {
	CleanupChat(ctx context.Context, chatID string) error
}

// Controller reacts to changes of the active conversation id.
//
// Cleanups run detached and are never cancelled. Re-entering a conversation
// while its cleanup is still in flight races with that cleanup: if the
// conversation was empty the server may delete it under the user. The
// controller tags each cleanup with its conversation id so the overlap is
// logged.
type Controller struct {
	loader  Loader
	cleaner Cleaner
	logger  *slog.Logger

	// CleanupTimeout bounds each cleanup request.
	CleanupTimeout time.Duration

	mu       sync.Mutex
	key      string
	phase    Phase
	gen      uint64
	inflight map[string]int

	cleanups sync.WaitGroup
}

// New creates a controller with no active conversation.
func New(loader Loader, cleaner Cleaner, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		loader:         loader,
		cleaner:        cleaner,
		logger:         logger.With("component", "lifecycle"),
		CleanupTimeout: DefaultCleanupTimeout,
		inflight:       make(map[string]int),
	}
}

// Key returns the active conversation id, "" when none.
func (c *Controller) Key() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.key
}

// Phase returns the state of the conversation slot.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Navigate makes key the active conversation id ("" for a location without
// one). The previous conversation, if any, gets a detached cleanup; then key
// is loaded, or the open conversation is reset when key is empty. Navigating
// to the active key does nothing. The returned error is the fetch error,
// which the chat store has already recorded.
func (c *Controller) Navigate(ctx context.Context, key string) error {
	c.mu.Lock()
	if key == c.key {
		c.mu.Unlock()
		return nil
	}
	prev := c.key
	c.key = key
	c.gen++
	gen := c.gen
	if key == "" {
		c.phase = Inactive
	} else {
		c.phase = Loading
		if c.inflight[key] > 0 {
			c.logger.Warn("cleanup superseded by re-entry", "chat", key)
		}
	}
	c.mu.Unlock()

	if prev != "" {
		c.cleanup(prev)
	}

	if key == "" {
		c.loader.ResetCurrent()
		return nil
	}

	err := c.loader.FetchMessages(ctx, key)

	c.mu.Lock()
	if c.gen == gen {
		c.phase = Loaded
	}
	c.mu.Unlock()
	return err
}

// Close ends the binding, cleaning up the active conversation.
func (c *Controller) Close() {
	c.mu.Lock()
	prev := c.key
	c.key = ""
	c.phase = Inactive
	c.gen++
	c.mu.Unlock()

	if prev != "" {
		c.cleanup(prev)
	}
}

// Wait blocks until every detached cleanup has finished.
func (c *Controller) Wait() {
	c.cleanups.Wait()
}

// cleanup fires the best-effort prune of chatID. Failures are logged only.
func (c *Controller) cleanup(chatID string) {
	c.mu.Lock()
	c.inflight[chatID]++
	c.mu.Unlock()

	c.cleanups.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.CleanupTimeout)
		defer cancel()

		err := c.cleaner.CleanupChat(ctx, chatID)

		c.mu.Lock()
		c.inflight[chatID]--
		if c.inflight[chatID] == 0 {
			delete(c.inflight, chatID)
		}
		reentered := c.key == chatID
		c.mu.Unlock()

		switch {
		case err != nil:
			c.logger.Warn("chat cleanup failed", "chat", chatID, "error", err)
		case reentered:
			c.logger.Warn("chat cleanup finished after re-entry", "chat", chatID)
		default:
			c.logger.Debug("chat cleanup done", "chat", chatID)
		}
	})
}
