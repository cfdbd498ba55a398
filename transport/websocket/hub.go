package websocket

import "sync"

// hub tracks which connections watch which session so every state change
// reaches all of them.
type hub struct {
	mu       sync.Mutex
	sessions map[string]map[*client]struct{}
}

func newHub() *hub {
	return &hub{
		sessions: make(map[string]map[*client]struct{}),
	}
}

func (that *hub) join(sessionID string, c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	members := that.sessions[sessionID]
	if members == nil {
		members = make(map[*client]struct{})
		that.sessions[sessionID] = members
	}
	members[c] = struct{}{}
}

func (that *hub) leave(sessionID string, c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	members, ok := that.sessions[sessionID]
	if !ok {
		return
	}

	delete(members, c)
	if len(members) == 0 {
		delete(that.sessions, sessionID)
	}
}

// members returns a snapshot, so callers can write without holding the hub lock.
func (that *hub) members(sessionID string) []*client {
	that.mu.Lock()
	defer that.mu.Unlock()

	clients := make([]*client, 0, len(that.sessions[sessionID]))
	for c := range that.sessions[sessionID] {
		clients = append(clients, c)
	}

	return clients
}
