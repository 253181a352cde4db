package realtime

import (
	"log/slog"
	"sync"

	"github.com/samber/lo"
)

// RegistryStats is a point-in-time summary of the registry.
type RegistryStats struct {
	Groups      int `json:"groups"`
	Connections int `json:"connections"`
}

// Registry maps group names to the live connections subscribed to them.
// Groups are created on first Join and removed when their last member leaves.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]map[*Connection]struct{}
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		groups: make(map[string]map[*Connection]struct{}),
		logger: logger.With("component", "group_registry"),
	}
}

// Join adds c to group. Joining twice is harmless.
// Returns ErrConnectionClosed for a closed connection.
func (r *Registry) Join(group string, c *Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !c.addGroup(group) {
		return ErrConnectionClosed
	}

	members, ok := r.groups[group]
	if !ok {
		members = make(map[*Connection]struct{})
		r.groups[group] = members
	}
	members[c] = struct{}{}

	r.logger.Debug("connection joined group",
		"group", group,
		"connection_id", c.ID(),
		"member_count", len(members))
	return nil
}

// Leave removes c from group. Leaving a group c is not in is a no-op.
func (r *Registry) Leave(group string, c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(group, c)
}

// LeaveAll removes c from every group it belongs to.
func (r *Registry) LeaveAll(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, group := range c.Groups() {
		r.leaveLocked(group, c)
	}
}

func (r *Registry) leaveLocked(group string, c *Connection) {
	c.removeGroup(group)

	members, ok := r.groups[group]
	if !ok {
		return
	}
	if _, member := members[c]; !member {
		return
	}

	delete(members, c)
	if len(members) == 0 {
		delete(r.groups, group)
	}

	r.logger.Debug("connection left group",
		"group", group,
		"connection_id", c.ID(),
		"member_count", len(members))
}

// MembersOf returns a snapshot of the members of group. Unknown groups yield
// an empty slice. The snapshot is safe to use after the lock is released.
func (r *Registry) MembersOf(group string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.groups[group])
}

// Stats counts groups and distinct connections.
func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make(map[*Connection]struct{})
	for _, members := range r.groups {
		for c := range members {
			conns[c] = struct{}{}
		}
	}
	return RegistryStats{Groups: len(r.groups), Connections: len(conns)}
}
