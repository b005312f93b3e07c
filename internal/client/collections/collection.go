// Package collections implements locally cached mirrors of remote
// collections (cart, wishlist) mutated optimistically: local state changes
// first, the remote call follows, and a failed call rolls the mirror back by
// refetching authoritative state wholesale.
package collections

import (
	"sync"

	"github.com/gophmart/gophmart/internal/client/models"
)

// sessionGate is the slice of the session manager the collections need:
// a local role check that fails without issuing any network call.
type sessionGate interface {
	Require(role models.Role) error
}

// collection is the shared mutable core of a cached collection: the item
// slice and a monotonic refresh sequence. A wholesale replacement is only
// applied when it belongs to the most recently issued refresh, so a stale
// in-flight response can never overwrite a newer one.
type collection[T any] struct {
	mu    sync.Mutex
	items []T
	seq   uint64
}

// beginRefresh stamps a new refresh and returns its sequence number.
func (c *collection[T]) beginRefresh() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// applyRefresh replaces the items wholesale if seq is still the latest
// issued refresh. Returns false when the response was stale and dropped.
func (c *collection[T]) applyRefresh(seq uint64, items []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return false
	}
	c.items = items
	return true
}

// snapshot returns a copy of the current items.
func (c *collection[T]) snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// reset drops all local state and invalidates in-flight refreshes.
func (c *collection[T]) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.items = nil
}
