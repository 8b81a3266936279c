package tui

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/raphaelgruber/tenantchat/internal/lifecycle"
)

// navigator hands conversation changes to the lifecycle controller in the
// order they were requested. Commands run on their own goroutines, so a
// navigation that was overtaken by a newer one is skipped.
type navigator struct {
	lifecycle *lifecycle.Controller

	issued atomic.Uint64
	mu     sync.Mutex
}

func newNavigator(c *lifecycle.Controller) *navigator {
	return &navigator{lifecycle: c}
}

// next reserves the sequence number of a navigation. Call it from Update.
func (n *navigator) next() uint64 {
	return n.issued.Add(1)
}

// navigate moves the controller to key unless a later navigation was issued.
// It reports whether the navigation ran.
func (n *navigator) navigate(ctx context.Context, seq uint64, key string) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if seq != n.issued.Load() {
		return false, nil
	}
	return true, n.lifecycle.Navigate(ctx, key)
}
