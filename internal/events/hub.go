// Package events fans out collection change notifications to
// subscribers. A notification carries no payload: subscribers reload the
// whole collection and replace their snapshot.
package events

import (
	"context"
	"sync"
)

// Change names the collection and workspace a mutation touched.
type Change struct {
	Collection  string
	WorkspaceID string
}

// Hub is a non-blocking broadcaster. Each subscriber has a one slot
// buffer; notifications arriving while one is pending are coalesced,
// since the next reload observes them anyway.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscription
}

type subscription struct {
	collection  string
	workspaceID string
	ch          chan Change
}

// NewHub returns a hub with no subscribers.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscription)}
}

// Publish notifies every subscriber matching the change.
func (h *Hub) Publish(c Change) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subs {
		if s.collection != "" && s.collection != c.Collection {
			continue
		}
		if s.workspaceID != c.WorkspaceID {
			continue
		}
		select {
		case s.ch <- c:
		default:
		}
	}
}

// Subscribe returns a channel of changes for one collection in one
// workspace. An empty collection matches every collection. The channel
// is closed once ctx is done.
func (h *Hub) Subscribe(ctx context.Context, collection, workspaceID string) <-chan Change {
	s := &subscription{
		collection:  collection,
		workspaceID: workspaceID,
		ch:          make(chan Change, 1),
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = s
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, id)
		close(s.ch)
		h.mu.Unlock()
	}()
	return s.ch
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
