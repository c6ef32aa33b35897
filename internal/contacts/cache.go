package contacts

import (
	"sync"

	"github.com/simplehq/simple-server/internal/labels"
)

// listCache holds the caller-visible contact and label lists for one owner.
// Refreshes carry a monotonic generation so a slow refresh can never
// overwrite the result of a newer one. A single writer (the Gateway) mutates
// it; snapshots are safe to read concurrently.
type listCache struct {
	mu sync.RWMutex

	nextGen         uint64
	appliedContacts uint64
	appliedLabels   uint64
	contacts        []Contact
	labelList       []labels.Label

	subs []chan struct{}
}

// begin hands out the generation token for an upcoming refresh.
func (c *listCache) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextGen++
	return c.nextGen
}

// applyContacts installs a refreshed contact list unless a newer refresh
// already landed. Returns whether the update was applied.
func (c *listCache) applyContacts(gen uint64, items []Contact) bool {
	c.mu.Lock()
	if gen <= c.appliedContacts {
		c.mu.Unlock()
		return false
	}
	c.appliedContacts = gen
	c.contacts = items
	subs := append([]chan struct{}(nil), c.subs...)
	c.mu.Unlock()
	notify(subs)
	return true
}

// applyLabels installs a refreshed label list under the same guard.
func (c *listCache) applyLabels(gen uint64, items []labels.Label) bool {
	c.mu.Lock()
	if gen <= c.appliedLabels {
		c.mu.Unlock()
		return false
	}
	c.appliedLabels = gen
	c.labelList = items
	subs := append([]chan struct{}(nil), c.subs...)
	c.mu.Unlock()
	notify(subs)
	return true
}

func (c *listCache) snapshotContacts() []Contact {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Contact(nil), c.contacts...)
}

func (c *listCache) snapshotLabels() []labels.Label {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]labels.Label(nil), c.labelList...)
}

// subscribe returns a channel that receives a signal after each cache
// mutation. Signals are coalesced; slow subscribers never block the writer.
func (c *listCache) subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	c.subs = append(c.subs, ch)
	c.mu.Unlock()
	return ch
}

func notify(subs []chan struct{}) {
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
