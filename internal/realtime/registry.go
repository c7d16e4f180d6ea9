package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Registry is the identity registry: it maps live connections to the one
// address group each belongs to and fans events out to group members. It is
// injectable behind delivery.Broadcaster so a clustered directory can replace
// it without touching the router or the store.
type Registry struct {
	mu sync.RWMutex
	// groups holds the members of each address group. A group may have zero,
	// one or many members; an empty group is pruned.
	groups map[string]map[*Client]struct{}
	// byClient is the reverse index enforcing at-most-one group per connection.
	byClient map[*Client]string
}

func NewRegistry() *Registry {
	return &Registry{
		groups:   make(map[string]map[*Client]struct{}),
		byClient: make(map[*Client]string),
	}
}

// Register binds a connection to an address group. Re-registration replaces the
// previous binding, so a connection is a member of exactly one group at any
// instant. An empty userID is ignored.
func (r *Registry) Register(c *Client, userID string) {
	if userID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(c)
	if r.groups[userID] == nil {
		r.groups[userID] = make(map[*Client]struct{})
	}
	r.groups[userID][c] = struct{}{}
	r.byClient[c] = userID
}

// Unregister removes a connection from its group. No-op if never registered.
func (r *Registry) Unregister(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(c)
}

func (r *Registry) removeLocked(c *Client) {
	userID, ok := r.byClient[c]
	if !ok {
		return
	}
	delete(r.byClient, c)
	if members := r.groups[userID]; members != nil {
		delete(members, c)
		if len(members) == 0 {
			delete(r.groups, userID)
		}
	}
}

// Members returns the current size of an address group.
func (r *Registry) Members(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[userID])
}

// Broadcast pushes one event frame to every member of the userID group.
// The frame is marshalled once and handed to each member's buffered send
// queue without blocking; a member with a full queue misses this frame.
// Zero members is not an error.
func (r *Registry) Broadcast(userID, event string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal broadcast payload", "event", event, "err", err)
		return
	}
	frame, err := json.Marshal(Event{Event: event, Data: raw})
	if err != nil {
		slog.Error("marshal broadcast frame", "event", event, "err", err)
		return
	}

	r.mu.RLock()
	members := make([]*Client, 0, len(r.groups[userID]))
	for c := range r.groups[userID] {
		members = append(members, c)
	}
	r.mu.RUnlock()

	for _, c := range members {
		select {
		case c.send <- frame:
		default:
			slog.Warn("dropping frame for slow client", "user_id", userID, "event", event)
		}
	}
}
