package core

// Registry holds the handles of currently connected peers. It is not safe for
// concurrent use; the hub goroutine owns it.
//
// Removal is terminal: a removed PeerID is remembered and can never be added
// again, since its outbound queue has already been closed.
type Registry struct {
	clients map[PeerID]*ClientHandle
	removed map[PeerID]struct{}
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[PeerID]*ClientHandle),
		removed: make(map[PeerID]struct{}),
	}
}

// Add inserts a handle. Returns false if the peer is already registered or
// was registered and removed before.
func (r *Registry) Add(h *ClientHandle) bool {
	if _, exists := r.clients[h.ID]; exists {
		return false
	}
	if r.Removed(h.ID) {
		return false
	}
	r.clients[h.ID] = h
	return true
}

// Remove deletes a peer and returns its handle, or nil if it was not registered.
func (r *Registry) Remove(id PeerID) *ClientHandle {
	h, exists := r.clients[id]
	if !exists {
		return nil
	}
	delete(r.clients, id)
	r.removed[id] = struct{}{}
	return h
}

// Removed reports whether id was registered once and has since been removed.
func (r *Registry) Removed(id PeerID) bool {
	_, gone := r.removed[id]
	return gone
}

// Get returns the handle for id.
func (r *Registry) Get(id PeerID) (*ClientHandle, bool) {
	h, ok := r.clients[id]
	return h, ok
}

// Len returns the number of registered peers.
func (r *Registry) Len() int {
	return len(r.clients)
}

// Each calls fn for every registered peer except skip. Pass an empty skip to
// visit everyone.
func (r *Registry) Each(skip PeerID, fn func(*ClientHandle)) {
	for id, h := range r.clients {
		if id == skip {
			continue
		}
		fn(h)
	}
}

// Snapshot copies the registry into a slice.
func (r *Registry) Snapshot() []PeerInfo {
	out := make([]PeerInfo, 0, len(r.clients))
	for _, h := range r.clients {
		out = append(out, PeerInfo{ID: h.ID, Addr: h.Addr})
	}
	return out
}
